package store

import (
	"context"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
)

// ScanRepository serves type queries without the secondary index by
// scanning the whole table page by page.
type ScanRepository struct {
	*sqliteDB
}

var _ Repository = (*ScanRepository)(nil)

// QueryByType filters a full scan by otype.
func (r *ScanRepository) QueryByType(ctx context.Context, otype content.ObjectType, fields ...string) ([]*content.Document, error) {
	return r.ScanByFilter(ctx, ByType(otype), fields...)
}
