package store

import (
	"context"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

// IndexedRepository answers type queries from the otype index.
type IndexedRepository struct {
	*sqliteDB
}

var _ Repository = (*IndexedRepository)(nil)

// QueryByType returns all documents of otype using the secondary index.
func (r *IndexedRepository) QueryByType(ctx context.Context, otype content.ObjectType, fields ...string) ([]*content.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		"SELECT data FROM documents INDEXED BY "+typeIndexName+" WHERE otype = ? ORDER BY rowid", string(otype))
	if err != nil {
		return nil, derrors.StoreError("query by type").WithCause(err).WithContext("otype", string(otype)).Build()
	}
	defer rows.Close()

	var out []*content.Document
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, derrors.StoreError("scan row").WithCause(err).Build()
		}
		doc, err := decode([]byte(data), fields)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, derrors.StoreError("iterate rows").WithCause(err).Build()
	}
	return out, nil
}
