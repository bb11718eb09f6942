package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagepublisher/internal/blob"
	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/feeds"
	"git.home.luguber.info/inful/pagepublisher/internal/metrics"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
	"git.home.luguber.info/inful/pagepublisher/internal/server/handlers"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

func newTestServer(t *testing.T) (*Server, *blob.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	repo, err := store.Open(ctx, ":memory:", store.Options{CreateTypeIndex: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.Put(ctx, &content.Document{ID: "layout", OType: content.TypeLayout, Body: `<html><head></head><body>{{.title}}</body></html>`}))
	require.NoError(t, repo.Put(ctx, &content.Document{ID: "p1", OType: content.TypePage, Path: "/hello", Title: "Hello", LayoutRef: "layout", SitemapEligible: true}))

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	blobs := blob.NewMemoryStore()
	targets := publish.Targets{"prod": {Name: "prod", Bucket: "site", SiteURL: "https://example.com"}}
	pub := publish.New(repo, blobs, targets, publish.WithRecorder(rec))
	gen := feeds.NewGenerator(repo, blobs, targets, feeds.WithRecorder(rec))

	ph := handlers.NewPublishHandlers(pub, gen, []feeds.Spec{{Name: "sitemap", Kind: "sitemap", Key: "sitemap.xml"}}, nil)
	mh := handlers.NewMonitoringHandlers([]string{"prod"}, nil, nil)
	return New(ph, mh, Options{Addr: "127.0.0.1:0", Metrics: metrics.HTTPHandler(reg)}), blobs
}

func TestRoutes(t *testing.T) {
	s, blobs := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/api/v1/prod/pages/p1/publish", "application/json", nil)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, []string{"hello"}, blobs.Keys("site"))

	resp, err = http.Post(ts.URL+"/api/v1/prod/feeds", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"hello", "sitemap.xml"}, blobs.Keys("site"))

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/prod/pages/p1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"sitemap.xml"}, blobs.Keys("site"))

	resp, err = http.Post(ts.URL+"/api/v1/nowhere/pages/bulk-publish", "application/json", strings.NewReader(`{"mode":"all"}`))
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, res["success"])

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	metricsBody, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(metricsBody), "pagepublisher_")

	resp, err = http.Get(ts.URL + "/api/v1/prod/pages/p1/publish")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStartStop(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Start(t.Context()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	resp, err := http.Get(fmt.Sprintf("http://%s/health", s.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
