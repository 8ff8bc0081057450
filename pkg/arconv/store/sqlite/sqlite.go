package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/arconv/pkg/arconv/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; batch workers share this handle.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL,
	at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
CREATE INDEX IF NOT EXISTS idx_events_kind_detail ON events(kind, detail);

CREATE TABLE IF NOT EXISTS conversions (
	id TEXT PRIMARY KEY,
	source TEXT,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	lines INTEGER NOT NULL DEFAULT 0,
	converted INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// RecordEvent appends a diagnostic event.
func (s *sqliteStore) RecordEvent(ctx context.Context, e store.Event) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, kind, detail, at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Kind, e.Detail, e.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Events returns events of kind (all kinds if empty), newest first.
func (s *sqliteStore) Events(ctx context.Context, kind string, limit int) ([]store.Event, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT id, kind, detail, at FROM events`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []store.Event
	for rows.Next() {
		var e store.Event
		var at string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Detail, &at); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// TopInvalidProducts returns the k most frequent unresolved lines.
func (s *sqliteStore) TopInvalidProducts(ctx context.Context, k int) ([]store.ProductCount, error) {
	if k <= 0 {
		k = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT detail, COUNT(*) AS n FROM events
WHERE kind = ?
GROUP BY detail
ORDER BY n DESC, detail ASC
LIMIT ?`, store.KindInvalidProduct, k)
	if err != nil {
		return nil, fmt.Errorf("query invalid products: %w", err)
	}
	defer rows.Close()

	var out []store.ProductCount
	for rows.Next() {
		var pc store.ProductCount
		if err := rows.Scan(&pc.Words, &pc.Count); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// SaveConversion inserts or replaces a conversion by ID.
func (s *sqliteStore) SaveConversion(ctx context.Context, c store.Conversion) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO conversions (id, source, input, output, lines, converted, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source = excluded.source,
	input = excluded.input,
	output = excluded.output,
	lines = excluded.lines,
	converted = excluded.converted,
	created_at = excluded.created_at`,
		c.ID, c.Source, c.Input, c.Output, c.Lines, c.Converted,
		c.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save conversion %s: %w", c.ID, err)
	}
	return nil
}

// GetConversion returns a conversion by ID.
func (s *sqliteStore) GetConversion(ctx context.Context, id string) (store.Conversion, bool, error) {
	var c store.Conversion
	var source sql.NullString
	var created string
	err := s.db.QueryRowContext(ctx, `
SELECT id, source, input, output, lines, converted, created_at
FROM conversions WHERE id = ?`, id).
		Scan(&c.ID, &source, &c.Input, &c.Output, &c.Lines, &c.Converted, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Conversion{}, false, nil
	}
	if err != nil {
		return store.Conversion{}, false, fmt.Errorf("get conversion %s: %w", id, err)
	}
	c.Source = source.String
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return c, true, nil
}
