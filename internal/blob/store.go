// Package blob provides the artifact store the publisher uploads rendered
// pages and feeds to.
package blob

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Store writes and removes artifacts addressed by bucket and key.
type Store interface {
	// Upload writes data under bucket/key, replacing any existing object.
	Upload(ctx context.Context, bucket, key string, data []byte, opts UploadOptions) error

	// Delete removes bucket/key. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, key string) error

	// Get returns the stored object or ErrNotFound.
	Get(ctx context.Context, bucket, key string) (*Object, error)
}

// UploadOptions carries the metadata stored alongside an artifact.
type UploadOptions struct {
	ContentType string
	Public      bool
}

// Object is a stored artifact with its metadata.
type Object struct {
	Bucket   string
	Key      string
	Data     []byte
	Metadata Metadata
}

// Metadata is persisted next to each artifact.
type Metadata struct {
	ContentType string    `json:"contentType"`
	ACL         string    `json:"acl"`
	Size        int64     `json:"size"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	ACLPublicRead = "public-read"
	ACLPrivate    = "private"
)

func aclFor(public bool) string {
	if public {
		return ACLPublicRead
	}
	return ACLPrivate
}

// ErrNotFound is returned by Get when the object doesn't exist.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that would escape the bucket.
var ErrInvalidKey = errors.New("invalid object key")

// NormalizeKey returns the canonical key for an artifact path: NFC
// normalized, slash separated, without a leading slash. Keys containing
// ".." segments are rejected.
func NormalizeKey(key string) (string, error) {
	k := norm.NFC.String(strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimLeft(k, "/")
	if k == "" {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(k, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	cleaned := path.Clean(k)
	if cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func validBucket(bucket string) bool {
	return bucket != "" && bucket != "." && bucket != ".." && !strings.ContainsAny(bucket, "/\\")
}
