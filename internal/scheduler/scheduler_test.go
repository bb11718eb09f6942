package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagepublisher/internal/blob"
	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

func TestScheduleCron(t *testing.T) {
	t.Run("returns job id for valid cron", func(t *testing.T) {
		s, err := New(nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		id, err := s.ScheduleCron("test", "*/5 * * * *", func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects invalid cron", func(t *testing.T) {
		s, err := New(nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		_, err = s.ScheduleCron("test", "this is not a cron", func() {})
		require.Error(t, err)
	})
}

func TestScheduleEvery(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	_, err = s.ScheduleEvery("test", 0, func() {})
	require.Error(t, err)

	ran := make(chan struct{}, 1)
	_, err = s.ScheduleEvery("tick", 20*time.Millisecond, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	s.Start(t.Context())

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

func newQueuePublisher(t *testing.T) (*QueuePublisher, store.Repository, *blob.MemoryStore) {
	t.Helper()
	repo, err := store.Open(context.Background(), ":memory:", store.Options{CreateTypeIndex: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.Put(context.Background(), &content.Document{
		ID: "layout", OType: content.TypeLayout, Body: `<html><head></head><body>{{.title}}</body></html>`,
	}))
	blobs := blob.NewMemoryStore()
	pub := publish.New(repo, blobs, publish.Targets{"prod": {Name: "prod", Bucket: "site"}})
	return &QueuePublisher{Publisher: pub, Target: "prod"}, repo, blobs
}

func TestQueuePublisherDrainsQueuedPages(t *testing.T) {
	qp, repo, blobs := newQueuePublisher(t)
	ctx := t.Context()
	require.NoError(t, repo.Put(ctx, &content.Document{ID: "a", OType: content.TypePage, Path: "/a", LayoutRef: "layout", Queued: true}))
	require.NoError(t, repo.Put(ctx, &content.Document{ID: "b", OType: content.TypePage, Path: "/b", LayoutRef: "layout"}))

	res := qp.RunOnce(ctx)
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"a"}, blobs.Keys("site"))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, got.Queued)

	res = qp.RunOnce(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"no queued pages"}, res.Log)
}
