package feeds

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagepublisher/internal/blob"
	"git.home.luguber.info/inful/pagepublisher/internal/config"
	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

const bucket = "site-prod"

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newGenerator(t *testing.T, docs ...*content.Document) (*Generator, *blob.MemoryStore) {
	t.Helper()
	repo, err := store.Open(context.Background(), ":memory:", store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	for _, d := range docs {
		require.NoError(t, repo.Put(context.Background(), d))
	}
	blobs := blob.NewMemoryStore()
	targets := publish.Targets{"prod": {Name: "prod", Bucket: bucket, SiteURL: "https://example.com", CDNBaseURL: "https://cdn.example.com"}}
	return NewGenerator(repo, blobs, targets, WithClock(func() time.Time { return fixedNow })), blobs
}

func newsPage(id, dt string) *content.Document {
	return &content.Document{
		ID: id, OType: content.TypePage, Path: "/news/" + id, Title: "Story " + id,
		Categories: []string{"news"}, Date: dt,
	}
}

func TestAtomFeedOrdersByEffectiveDateDescending(t *testing.T) {
	g, blobs := newGenerator(t,
		newsPage("jan", "2024-01-01"),
		newsPage("mar", "2024-03-01"),
		newsPage("feb", "2024-02-01"),
		&content.Document{ID: "other", OType: content.TypePage, Path: "/x", Categories: []string{"blog"}, Date: "2024-05-01"},
	)

	rep := g.PublishFeeds(t.Context(), "prod", []Spec{{Name: "news", Kind: config.FeedAtom, Key: "news.xml", Category: "news"}}, nil)
	require.NoError(t, rep.Err)
	require.True(t, rep.Success)
	assert.Equal(t, []Outcome{{Name: "news"}}, rep.Outcomes)

	obj, err := blobs.Get(t.Context(), bucket, "news.xml")
	require.NoError(t, err)
	assert.Equal(t, "application/atom+xml", obj.Metadata.ContentType)

	var feed atomFeed
	require.NoError(t, xml.Unmarshal(obj.Data, &feed))
	require.Len(t, feed.Entries, 3)
	assert.Equal(t, "Story mar", feed.Entries[0].Title)
	assert.Equal(t, "Story feb", feed.Entries[1].Title)
	assert.Equal(t, "Story jan", feed.Entries[2].Title)
	assert.Equal(t, "https://example.com/news/mar", feed.Entries[0].ID)
	assert.Equal(t, "2024-03-01T00:00:00Z", feed.Updated)
}

func TestEffectiveDateFallsBackToPubDate(t *testing.T) {
	a := newsPage("a", "")
	a.PubDate = "2024-04-01"
	b := newsPage("b", "2024-03-01")
	b.PubDate = "2024-12-01"
	c := newsPage("c", "")

	g, blobs := newGenerator(t, a, b, c)
	rep := g.PublishFeeds(t.Context(), "prod", []Spec{{Name: "news", Kind: config.FeedJSON, Key: "news.json", Category: "news"}}, &content.GlobalConfig{})
	require.True(t, rep.Success)

	obj, err := blobs.Get(t.Context(), bucket, "news.json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", obj.Metadata.ContentType)

	var entries []jsonEntry
	require.NoError(t, json.Unmarshal(obj.Data, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Empty(t, entries[2].Date)
}

func TestUnparseableDateFallsBackToPubDate(t *testing.T) {
	a := newsPage("a", "sometime soon")
	a.PubDate = "2024-06-01"
	b := newsPage("b", "2024-05-01")

	got, ok := effectiveDate(a)
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.June, got.Month())

	g, blobs := newGenerator(t, b, a)
	rep := g.PublishFeeds(t.Context(), "prod", []Spec{{Name: "news", Kind: config.FeedJSON, Key: "news.json", Category: "news"}}, &content.GlobalConfig{})
	require.True(t, rep.Success)

	obj, err := blobs.Get(t.Context(), bucket, "news.json")
	require.NoError(t, err)
	var entries []jsonEntry
	require.NoError(t, json.Unmarshal(obj.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"a", "b"}, []string{entries[0].ID, entries[1].ID})
}

func TestAtomCoverImageResolvedAgainstCDN(t *testing.T) {
	p := newsPage("p", "2024-01-01")
	p.CoverImage = "img/cover.jpg"
	abs := newsPage("q", "2024-01-02")
	abs.CoverImage = "https://images.example.org/q.png"

	g, blobs := newGenerator(t, p, abs)
	rep := g.PublishFeeds(t.Context(), "prod", []Spec{{Name: "news", Kind: config.FeedAtom, Key: "feeds/news.atom", Category: "news", Limit: 5}}, nil)
	require.True(t, rep.Success)

	obj, err := blobs.Get(t.Context(), bucket, "feeds/news.atom")
	require.NoError(t, err)
	var feed atomFeed
	require.NoError(t, xml.Unmarshal(obj.Data, &feed))
	require.Len(t, feed.Entries, 2)
	require.Len(t, feed.Entries[0].Links, 2)
	assert.Equal(t, "https://images.example.org/q.png", feed.Entries[0].Links[1].Href)
	assert.Equal(t, "https://cdn.example.com/img/cover.jpg", feed.Entries[1].Links[1].Href)
}

func TestSitemapExcludesRootAndIneligible(t *testing.T) {
	g, blobs := newGenerator(t,
		&content.Document{ID: "home", OType: content.TypePage, Path: "/", SitemapEligible: true},
		&content.Document{ID: "b", OType: content.TypePage, Path: "/b", SitemapEligible: true, UpdatedAt: "2024-02-03T10:00:00Z"},
		&content.Document{ID: "a", OType: content.TypePage, Path: "/a", SitemapEligible: true},
		&content.Document{ID: "hidden", OType: content.TypePage, Path: "/hidden"},
	)

	rep := g.PublishFeeds(t.Context(), "prod", []Spec{{Name: "sitemap", Kind: config.FeedSitemap, Key: "sitemap.xml"}}, nil)
	require.True(t, rep.Success)

	obj, err := blobs.Get(t.Context(), bucket, "sitemap.xml")
	require.NoError(t, err)
	assert.Equal(t, "text/xml", obj.Metadata.ContentType)

	var set urlSet
	require.NoError(t, xml.Unmarshal(obj.Data, &set))
	assert.Equal(t, []sitemapURL{
		{Loc: "https://example.com/a"},
		{Loc: "https://example.com/b", LastMod: "2024-02-03"},
	}, set.URLs)
}

func TestFeedLimit(t *testing.T) {
	g, blobs := newGenerator(t, newsPage("a", "2024-01-01"), newsPage("b", "2024-01-02"), newsPage("c", "2024-01-03"))
	rep := g.PublishFeeds(t.Context(), "prod", []Spec{{Name: "latest", Kind: config.FeedJSON, Key: "latest.json", Category: "news", Limit: 2}}, nil)
	require.True(t, rep.Success)

	obj, err := blobs.Get(t.Context(), bucket, "latest.json")
	require.NoError(t, err)
	var entries []jsonEntry
	require.NoError(t, json.Unmarshal(obj.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].ID)
}

func TestFailingFeedDoesNotBlockOthers(t *testing.T) {
	g, blobs := newGenerator(t, newsPage("a", "2024-01-01"))
	blobs.FailUpload = func(_, key string) error {
		if key == "broken.xml" {
			return errors.New("access denied")
		}
		return nil
	}

	rep := g.PublishFeeds(t.Context(), "prod", []Spec{
		{Name: "broken", Kind: config.FeedAtom, Key: "broken.xml", Category: "news"},
		{Name: "nocategory", Kind: config.FeedAtom, Key: "x.xml"},
		{Name: "ok", Kind: config.FeedJSON, Key: "ok.json", Category: "news"},
	}, nil)

	require.NoError(t, rep.Err)
	assert.False(t, rep.Success)
	require.Len(t, rep.Outcomes, 3)
	assert.True(t, rep.Outcomes[0].HasError)
	assert.Contains(t, rep.Outcomes[0].ErrorMsg, "upload feed")
	assert.True(t, rep.Outcomes[1].HasError)
	assert.False(t, rep.Outcomes[2].HasError)
	assert.Equal(t, []string{"ok.json"}, blobs.Keys(bucket))
}

func TestPublishFeedsUnknownTarget(t *testing.T) {
	g, _ := newGenerator(t)
	rep := g.PublishFeeds(t.Context(), "staging", nil, nil)
	require.Error(t, rep.Err)
	assert.True(t, derrors.HasCategory(rep.Err, derrors.CategoryConfig))
	assert.False(t, rep.Success)
}

func TestReportMarshalJSON(t *testing.T) {
	rep := &Report{Outcomes: []Outcome{{Name: "a", HasError: true, ErrorMsg: "boom"}}}
	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"log":[],"feeds":[{"name":"a","hasError":true,"errormsg":"boom"}]}`, string(data))
}

func TestSpecsFromConfig(t *testing.T) {
	specs := SpecsFromConfig([]config.FeedConfig{{Name: "n", Kind: config.FeedAtom, Key: "n.xml", Category: "news", Limit: 3}})
	assert.Equal(t, []Spec{{Name: "n", Kind: config.FeedAtom, Key: "n.xml", Category: "news", Limit: 3}}, specs)
}
