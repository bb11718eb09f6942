package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"/blog/post-a":  "blog/post-a",
		"blog//post-a/": "blog/post-a",
		"\\docs\\intro": "docs/intro",
		"cafe\u0301":    "caf\u00e9",
		"/navtree.json": "navtree.json",
		"./a/./b":       "a/b",
	}
	for in, want := range cases {
		got, err := NormalizeKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "/", "../etc/passwd", "a/../../b"} {
		_, err := NormalizeKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestFSStoreUploadGetDelete(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	ctx := context.Background()

	data := []byte("<html><head></head></html>")
	err = store.Upload(ctx, "site-prod", "/blog/post-a", data, UploadOptions{ContentType: "text/html; charset=utf-8", Public: true})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "site-prod", "blog", "post-a", ".object")); err != nil {
		t.Errorf("object file not created: %v", err)
	}

	obj, err := store.Get(ctx, "site-prod", "blog/post-a")
	require.NoError(t, err)
	assert.Equal(t, data, obj.Data)
	assert.Equal(t, "text/html; charset=utf-8", obj.Metadata.ContentType)
	assert.Equal(t, ACLPublicRead, obj.Metadata.ACL)
	assert.EqualValues(t, len(data), obj.Metadata.Size)

	require.NoError(t, store.Delete(ctx, "site-prod", "/blog/post-a"))
	_, err = store.Get(ctx, "site-prod", "blog/post-a")
	assert.True(t, errors.Is(err, ErrNotFound))

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, "site-prod", "/blog/post-a"))
}

func TestFSStoreOverwrite(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "b", "k", []byte("one"), UploadOptions{}))
	require.NoError(t, store.Upload(ctx, "b", "k", []byte("two"), UploadOptions{ContentType: "text/plain"}))

	obj, err := store.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(obj.Data))
	assert.Equal(t, ACLPrivate, obj.Metadata.ACL)
}

func TestFSStoreRejectsBadKeys(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, store.Upload(ctx, "b", "../escape", []byte("x"), UploadOptions{}))
	assert.Error(t, store.Upload(ctx, "../b", "k", []byte("x"), UploadOptions{}))
	assert.Error(t, store.Upload(ctx, "b", "k/.object", []byte("x"), UploadOptions{}))
	assert.Error(t, store.Upload(ctx, "b", ".meta.json", []byte("x"), UploadOptions{}))
}

func TestFSStoreKeyCanPrefixOtherKeys(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFSStore(tmpDir)
	require.NoError(t, err)
	ctx := context.Background()

	for _, order := range [][]string{{"blog", "blog/post-a"}, {"docs/intro", "docs"}} {
		for _, key := range order {
			require.NoError(t, store.Upload(ctx, "b", key, []byte("page "+key), UploadOptions{ContentType: "text/html"}), key)
		}
		for _, key := range order {
			obj, err := store.Get(ctx, "b", key)
			require.NoError(t, err, key)
			assert.Equal(t, "page "+key, string(obj.Data))
			assert.Equal(t, "text/html", obj.Metadata.ContentType)
		}
	}

	require.NoError(t, store.Delete(ctx, "b", "blog"))
	_, err = store.Get(ctx, "b", "blog")
	assert.ErrorIs(t, err, ErrNotFound)
	obj, err := store.Get(ctx, "b", "blog/post-a")
	require.NoError(t, err)
	assert.Equal(t, "page blog/post-a", string(obj.Data))

	require.NoError(t, store.Delete(ctx, "b", "blog/post-a"))
	_, err = store.Get(ctx, "b", "blog/post-a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoDirExists(t, filepath.Join(tmpDir, "b", "blog"))

	path, err := store.ObjectPath("b", "docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "b", "docs", ".object"), path)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "b", "/index.html", []byte("a"), UploadOptions{Public: true}))
	require.NoError(t, store.Upload(ctx, "b", "about", []byte("b"), UploadOptions{}))
	require.NoError(t, store.Upload(ctx, "other", "about", []byte("c"), UploadOptions{}))

	assert.Equal(t, []string{"about", "index.html"}, store.Keys("b"))

	obj, err := store.Get(ctx, "b", "index.html")
	require.NoError(t, err)
	obj.Data[0] = 'z'
	again, err := store.Get(ctx, "b", "index.html")
	require.NoError(t, err)
	assert.Equal(t, "a", string(again.Data))

	require.NoError(t, store.Delete(ctx, "b", "about"))
	require.NoError(t, store.Delete(ctx, "b", "about"))
	assert.Equal(t, []string{"index.html"}, store.Keys("b"))

	calls := store.Calls()
	assert.Equal(t, 3, calls.Upload)
	assert.Equal(t, 2, calls.Delete)
}

func TestMemoryStoreFailUpload(t *testing.T) {
	store := NewMemoryStore()
	store.FailUpload = func(_, key string) error {
		if key == "bad" {
			return errors.New("boom")
		}
		return nil
	}
	ctx := context.Background()
	assert.Error(t, store.Upload(ctx, "b", "bad", nil, UploadOptions{}))
	assert.NoError(t, store.Upload(ctx, "b", "good", nil, UploadOptions{}))
	assert.Equal(t, []string{"good"}, store.Keys("b"))
}
