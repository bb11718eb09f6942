package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Every key owns a directory holding the object bytes and its metadata
// sidecar, so a key may also be the prefix of other keys.
const (
	objectFile = ".object"
	metaFile   = ".meta.json"
)

// FSStore is a filesystem-backed Store. Each bucket is a directory under
// the base path:
//
//	<base>/
//	  <bucket>/
//	    blog/.object            (artifact bytes for "blog")
//	    blog/.meta.json
//	    blog/post-a/.object     (artifact bytes for "blog/post-a")
//	    blog/post-a/.meta.json
type FSStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFSStore creates a filesystem store rooted at basePath.
func NewFSStore(basePath string) (*FSStore, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", basePath, err)
	}
	return &FSStore{basePath: basePath}, nil
}

// Upload writes the artifact and its metadata sidecar.
func (fs *FSStore) Upload(_ context.Context, bucket, key string, data []byte, opts UploadOptions) error {
	objectPath, metaPath, err := fs.paths(bucket, key)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(objectPath), 0o750); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}
	if err := writeFileAtomic(objectPath, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}

	meta := Metadata{
		ContentType: opts.ContentType,
		ACL:         aclFor(opts.Public),
		Size:        int64(len(data)),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := os.MkdirAll(filepath.Dir(metaPath), 0o750); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := writeFileAtomic(metaPath, raw, 0o600); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Delete removes the artifact and its sidecar. Missing files are ignored.
func (fs *FSStore) Delete(_ context.Context, bucket, key string) error {
	objectPath, metaPath, err := fs.paths(bucket, key)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, p := range []string{objectPath, metaPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	fs.prune(filepath.Dir(objectPath), filepath.Join(fs.basePath, bucket))
	return nil
}

// prune removes now-empty key directories up to, not including, root.
func (fs *FSStore) prune(dir, root string) {
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// ObjectPath returns the file holding the bytes of key in bucket.
func (fs *FSStore) ObjectPath(bucket, key string) (string, error) {
	objectPath, _, err := fs.paths(bucket, key)
	return objectPath, err
}

// Get reads an artifact back with its metadata.
func (fs *FSStore) Get(_ context.Context, bucket, key string) (*Object, error) {
	objectPath, metaPath, err := fs.paths(bucket, key)
	if err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	// #nosec G304 - objectPath is built from a normalized key
	data, err := os.ReadFile(objectPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read object: %w", err)
	}

	var meta Metadata
	// #nosec G304 - metaPath is built from a normalized key
	if raw, err := os.ReadFile(metaPath); err == nil {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}

	normalized, _ := NormalizeKey(key)
	return &Object{Bucket: bucket, Key: normalized, Data: data, Metadata: meta}, nil
}

func (fs *FSStore) paths(bucket, key string) (string, string, error) {
	if !validBucket(bucket) {
		return "", "", fmt.Errorf("%w: bucket %q", ErrInvalidKey, bucket)
	}
	k, err := NormalizeKey(key)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", err, key)
	}
	for _, seg := range strings.Split(k, "/") {
		if seg == objectFile || seg == metaFile || strings.HasPrefix(seg, ".tmp-") {
			return "", "", fmt.Errorf("%w: reserved name %q", ErrInvalidKey, key)
		}
	}
	dir := filepath.Join(fs.basePath, bucket, filepath.FromSlash(k))
	return filepath.Join(dir, objectFile), filepath.Join(dir, metaFile), nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
