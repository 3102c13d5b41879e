// Package store persists session documents in SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/agendagen/internal/doctree"
)

// ErrNotFound is returned when no document is stored under an id.
var ErrNotFound = errors.New("document not found")

// SQLiteStore keeps one row per session: the document JSON and the time
// of its last save.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time; sqlite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		body JSON NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save writes doc under id, replacing any previous version.
func (s *SQLiteStore) Save(ctx context.Context, id string, doc *doctree.Document) error {
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, body, updated_at) VALUES (?, ?, ?)`,
		id, buf.String(), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

// Load reads the document stored under id.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*doctree.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	doc, err := doctree.Decode(bytes.NewReader([]byte(body)))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes the document stored under id and reports whether one was
// stored. Deleting a missing id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", id, err)
	}
	return n > 0, nil
}

// List returns stored ids, most recently saved first.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Prune deletes documents not saved since before cutoff and returns how
// many were removed.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE updated_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune documents: %w", err)
	}
	return res.RowsAffected()
}
