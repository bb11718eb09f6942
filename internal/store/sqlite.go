package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

const typeIndexName = "idx_documents_otype"

// DefaultPageSize is the number of rows fetched per scan round trip.
const DefaultPageSize = 100

// Options controls how Open prepares the database.
type Options struct {
	// CreateTypeIndex creates the otype secondary index when missing.
	CreateTypeIndex bool
	// PageSize caps rows per scan page; zero means DefaultPageSize.
	PageSize int
}

// sqliteDB holds the connection and the operations both repository
// flavours share.
type sqliteDB struct {
	db       *sql.DB
	mu       sync.RWMutex
	pageSize int
}

// Open connects to the SQLite database at path (":memory:" for an
// in-memory store), ensures the schema, and selects the repository
// implementation by probing for the type index.
func Open(ctx context.Context, path string, opts Options) (Repository, error) {
	base, err := openSQLite(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	indexed, err := base.hasTypeIndex(ctx)
	if err != nil {
		_ = base.db.Close()
		return nil, err
	}
	if indexed {
		slog.Debug("Document store using type index", slog.String("db", path))
		return &IndexedRepository{sqliteDB: base}, nil
	}
	slog.Info("Document store type index unavailable, falling back to table scans", slog.String("db", path))
	return &ScanRepository{sqliteDB: base}, nil
}

func openSQLite(ctx context.Context, path string, opts Options) (*sqliteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, derrors.StoreError("open sqlite database").WithCause(err).Fatal().Build()
	}
	// A single connection keeps ":memory:" databases coherent and
	// serialises writers the way SQLite wants anyway.
	db.SetMaxOpenConns(1)

	base := &sqliteDB{db: db, pageSize: opts.PageSize}
	if base.pageSize <= 0 {
		base.pageSize = DefaultPageSize
	}
	if err := base.initialize(ctx, opts.CreateTypeIndex); err != nil {
		_ = db.Close()
		return nil, derrors.StoreError("initialize schema").WithCause(err).Fatal().Build()
	}
	return base, nil
}

func (s *sqliteDB) initialize(ctx context.Context, withIndex bool) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		otype TEXT NOT NULL,
		data TEXT NOT NULL
	);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	if withIndex {
		if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS "+typeIndexName+" ON documents(otype)"); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteDB) hasTypeIndex(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?", typeIndexName,
	).Scan(&n)
	if err != nil {
		return false, derrors.StoreError("probe type index").WithCause(err).Fatal().Build()
	}
	return n > 0, nil
}

// Get returns a single document.
func (s *sqliteDB) Get(ctx context.Context, id string) (*content.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM documents WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound.WithContext("document_id", id)
	}
	if err != nil {
		return nil, derrors.StoreError("get document").WithCause(err).WithContext("document_id", id).Build()
	}
	return decode([]byte(data), nil)
}

// Put upserts the full document.
func (s *sqliteDB) Put(ctx context.Context, doc *content.Document) error {
	if err := doc.Validate(); err != nil {
		return derrors.WrapError(err, derrors.CategoryValidation, "invalid document").Build()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, otype, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET otype = excluded.otype, data = excluded.data`,
		doc.ID, string(doc.OType), string(data),
	)
	if err != nil {
		return derrors.StoreError("put document").WithCause(err).WithContext("document_id", doc.ID).Build()
	}
	return nil
}

// UpdateField patches one attribute in place with json_set; the row must
// already exist, so a concurrent delete is reported rather than resurrected.
func (s *sqliteDB) UpdateField(ctx context.Context, id, field string, value any) error {
	if !validFieldName(field) || field == "id" || field == "otype" {
		return derrors.ValidationError("field cannot be updated").WithContext("field", field).Build()
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal field %s: %w", field, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET data = json_set(data, ?, json(?)) WHERE id = ?",
		"$."+field, string(encoded), id,
	)
	if err != nil {
		return derrors.StoreError("update document field").WithCause(err).
			WithContext("document_id", id).WithContext("field", field).Build()
	}
	n, err := res.RowsAffected()
	if err != nil {
		return derrors.StoreError("update document field").WithCause(err).WithContext("document_id", id).Build()
	}
	if n == 0 {
		return ErrNotFound.WithContext("document_id", id)
	}
	return nil
}

// ScanByFilter pages through the table in rowid order and filters in memory.
func (s *sqliteDB) ScanByFilter(ctx context.Context, pred Predicate, fields ...string) ([]*content.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		out     []*content.Document
		lastRow int64
	)
	for {
		page, last, err := s.scanPage(ctx, lastRow, fields)
		if err != nil {
			return nil, err
		}
		for _, d := range page {
			if pred == nil || pred(d) {
				out = append(out, d)
			}
		}
		if len(page) < s.pageSize {
			return out, nil
		}
		lastRow = last
	}
}

func (s *sqliteDB) scanPage(ctx context.Context, after int64, fields []string) ([]*content.Document, int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT rowid, data FROM documents WHERE rowid > ? ORDER BY rowid LIMIT ?", after, s.pageSize)
	if err != nil {
		return nil, 0, derrors.StoreError("scan documents").WithCause(err).Build()
	}
	defer rows.Close()

	var (
		page []*content.Document
		last int64
	)
	for rows.Next() {
		var data string
		if err := rows.Scan(&last, &data); err != nil {
			return nil, 0, derrors.StoreError("scan row").WithCause(err).Build()
		}
		doc, err := decode([]byte(data), fields)
		if err != nil {
			return nil, 0, err
		}
		page = append(page, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, derrors.StoreError("iterate rows").WithCause(err).Build()
	}
	return page, last, nil
}

// Close closes the database connection.
func (s *sqliteDB) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func validFieldName(field string) bool {
	if field == "" {
		return false
	}
	for _, r := range field {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return !strings.ContainsAny(field[:1], "0123456789")
}
