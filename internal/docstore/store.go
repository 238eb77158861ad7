// Package docstore keeps serialized documents in a SQLite database, keyed
// by document ID and indexed by the digest of the original text.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
package docstore

import (
	"bytes"
	"context"
	"database/sql"
	"time"

	"github.com/FocuswithJustin/doctext/core/cache"
	"github.com/FocuswithJustin/doctext/core/document"
	"github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/span"
	"github.com/FocuswithJustin/doctext/core/xml"
	"github.com/FocuswithJustin/doctext/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	text_digest   TEXT NOT NULL,
	source_digest TEXT NOT NULL DEFAULT '',
	regions       INTEGER NOT NULL,
	spans         INTEGER NOT NULL,
	xml           BLOB NOT NULL,
	created       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_digest ON documents(text_digest);
`

// now is replaceable in tests.
var now = time.Now

// Entry describes a stored document without loading it.
type Entry struct {
	ID           string
	Name         string
	TextDigest   string
	SourceDigest string
	Regions      int
	Spans        int
	Created      time.Time
}

// Store is an open document database. Serialized documents are kept in
// an LRU cache in front of the database.
type Store struct {
	db    *sql.DB
	path  string
	cache *cache.LRU[string, []byte]
}

func xmlSize(b []byte) int64 { return int64(len(b)) }

// DriverType returns "cgo" for mattn/go-sqlite3 and "purego" for
// modernc.org/sqlite.
func DriverType() string {
	return driverType
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewIO("create schema", path, err)
	}
	logging.Debug("opened document store", "path", path, "driver", driverType)
	return &Store{db: db, path: path, cache: cache.New[string, []byte](cache.DefaultConfig(), xmlSize)}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// CacheStats returns the statistics of the document cache.
func (s *Store) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put saves d, replacing any document with the same ID. A replaced
// document keeps its creation time.
func (s *Store) Put(ctx context.Context, d *document.Document, opts xml.Options) error {
	var buf bytes.Buffer
	if _, err := d.Encode(&buf, opts); err != nil {
		return errors.Wrapf(err, "serializing document %s", d.ID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, text_digest, source_digest, regions, spans, xml, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			text_digest = excluded.text_digest,
			source_digest = excluded.source_digest,
			regions = excluded.regions,
			spans = excluded.spans,
			xml = excluded.xml`,
		d.ID, d.Name, d.Digest(), d.SourceDigest, len(d.Regions), d.Metadata.Len(), buf.Bytes(), now().UnixNano())
	if err != nil {
		s.cache.Remove(d.ID)
		return errors.NewIO("put "+d.ID, s.path, err)
	}
	s.cache.Put(d.ID, bytes.Clone(buf.Bytes()))
	logging.DocumentEvent(logging.WithDocumentID(ctx, d.ID), "stored", "bytes", buf.Len())
	return nil
}

// Get loads the document with the given ID, creating its spans with reg
// (the built-in span types when nil).
func (s *Store) Get(ctx context.Context, id string, reg *span.Registry) (*document.Document, error) {
	data, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := document.Load(data, reg)
	if err != nil {
		return nil, errors.Wrapf(err, "loading stored document %s", id)
	}
	for _, w := range d.Warnings {
		logging.LoadWarning(w.Element, w.Message, "document", id)
	}
	return d, nil
}

func (s *Store) load(ctx context.Context, id string) ([]byte, error) {
	if data, ok := s.cache.Get(id); ok {
		return data, nil
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT xml FROM documents WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("document", id)
	}
	if err != nil {
		return nil, errors.NewIO("get "+id, s.path, err)
	}
	s.cache.Put(id, data)
	return data, nil
}

// Delete removes the document with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.cache.Remove(id)
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return errors.NewIO("delete "+id, s.path, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFound("document", id)
	}
	return nil
}

// List returns every stored document, oldest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, `SELECT id, name, text_digest, source_digest, regions, spans, created
		FROM documents ORDER BY created, id`)
}

// ByDigest returns the documents whose original text has the given digest.
func (s *Store) ByDigest(ctx context.Context, digest string) ([]Entry, error) {
	return s.query(ctx, `SELECT id, name, text_digest, source_digest, regions, spans, created
		FROM documents WHERE text_digest = ? ORDER BY created, id`, digest)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.NewIO("list", s.path, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Name, &e.TextDigest, &e.SourceDigest, &e.Regions, &e.Spans, &created); err != nil {
			return nil, errors.NewIO("list", s.path, err)
		}
		e.Created = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("list", s.path, err)
	}
	return entries, nil
}
