package blob

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*Object
	calls   MemoryCalls

	// FailUpload, when set, is consulted before every upload.
	FailUpload func(bucket, key string) error
}

// MemoryCalls tracks method invocations for test verification.
type MemoryCalls struct {
	Upload int
	Delete int
	Get    int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*Object)}
}

func objectID(bucket, key string) string { return bucket + "/" + key }

// Upload stores a copy of data.
func (m *MemoryStore) Upload(_ context.Context, bucket, key string, data []byte, opts UploadOptions) error {
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Upload++

	if m.FailUpload != nil {
		if err := m.FailUpload(bucket, k); err != nil {
			return err
		}
	}
	stored := &Object{
		Bucket: bucket,
		Key:    k,
		Data:   append([]byte(nil), data...),
		Metadata: Metadata{
			ContentType: opts.ContentType,
			ACL:         aclFor(opts.Public),
			Size:        int64(len(data)),
			UpdatedAt:   time.Now().UTC(),
		},
	}
	m.objects[objectID(bucket, k)] = stored
	return nil
}

// Delete removes an object if present.
func (m *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Delete++
	delete(m.objects, objectID(bucket, k))
	return nil
}

// Get returns a copy of the stored object.
func (m *MemoryStore) Get(_ context.Context, bucket, key string) (*Object, error) {
	k, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Get++

	obj, ok := m.objects[objectID(bucket, k)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *obj
	cp.Data = append([]byte(nil), obj.Data...)
	return &cp, nil
}

// Keys lists the keys stored in bucket, sorted.
func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for _, obj := range m.objects {
		if obj.Bucket == bucket {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Calls returns a snapshot of the invocation counters.
func (m *MemoryStore) Calls() MemoryCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
