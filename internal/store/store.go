// Package store is the document repository adapter: typed get, query,
// scan, put and single-field update over the single content table.
//
// Two implementations share the Repository interface. IndexedRepository
// answers QueryByType from the otype secondary index; ScanRepository has
// no index to rely on and pages through the whole table instead. Open
// probes the database once and returns whichever one applies.
package store

import (
	"context"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

// Predicate selects documents during a scan.
type Predicate func(doc *content.Document) bool

// Repository is the contract the publishing engine consumes.
type Repository interface {
	// Get returns the document with id or ErrNotFound.
	Get(ctx context.Context, id string) (*content.Document, error)

	// QueryByType returns every document of the given type. When fields is
	// non-empty only those attributes (plus id and otype) are populated.
	QueryByType(ctx context.Context, otype content.ObjectType, fields ...string) ([]*content.Document, error)

	// ScanByFilter walks the full table, paging past the per-response
	// limit, and returns the documents matching pred.
	ScanByFilter(ctx context.Context, pred Predicate, fields ...string) ([]*content.Document, error)

	// Put upserts a full document.
	Put(ctx context.Context, doc *content.Document) error

	// UpdateField sets a single top-level attribute of an existing
	// document without rewriting the others.
	UpdateField(ctx context.Context, id, field string, value any) error

	// Close releases the underlying connection.
	Close() error
}

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = derrors.NotFoundError("document not found").Build()

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return derrors.HasCategory(err, derrors.CategoryNotFound)
}

// ByType is a predicate matching a single object type.
func ByType(otype content.ObjectType) Predicate {
	return func(doc *content.Document) bool { return doc.OType == otype }
}

// Filter runs QueryByType and keeps the documents matching pred.
func Filter(ctx context.Context, repo Repository, otype content.ObjectType, pred Predicate, fields ...string) ([]*content.Document, error) {
	docs, err := repo.QueryByType(ctx, otype, fields...)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return docs, nil
	}
	out := docs[:0]
	for _, d := range docs {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out, nil
}
