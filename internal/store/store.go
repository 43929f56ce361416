// Package store provides the SQLite-backed entity store for authors, genres,
// books and book instances. Referential integrity between the collections is
// the caller's responsibility; the schema declares no foreign keys.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/libris/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS authors (
	id            TEXT PRIMARY KEY,
	first_name    TEXT NOT NULL,
	family_name   TEXT NOT NULL,
	date_of_birth TEXT,
	date_of_death TEXT
);

CREATE TABLE IF NOT EXISTS genres (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
	id        TEXT PRIMARY KEY,
	title     TEXT NOT NULL,
	author_id TEXT NOT NULL,
	summary   TEXT NOT NULL DEFAULT '',
	isbn      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS book_genres (
	book_id  TEXT NOT NULL,
	genre_id TEXT NOT NULL,
	PRIMARY KEY (book_id, genre_id)
);

CREATE TABLE IF NOT EXISTS bookinstances (
	id       TEXT PRIMARY KEY,
	book_id  TEXT NOT NULL,
	imprint  TEXT NOT NULL,
	status   TEXT NOT NULL DEFAULT 'Maintenance',
	due_back TEXT
);

CREATE INDEX IF NOT EXISTS idx_genres_name ON genres(name);
CREATE INDEX IF NOT EXISTS idx_books_author ON books(author_id);
CREATE INDEX IF NOT EXISTS idx_book_genres_genre ON book_genres(genre_id);
CREATE INDEX IF NOT EXISTS idx_bookinstances_book ON bookinstances(book_id);
`

// Collection names a table that can be counted.
type Collection string

const (
	Authors       Collection = "authors"
	Genres        Collection = "genres"
	Books         Collection = "books"
	BookInstances Collection = "bookinstances"
)

const dateLayout = "2006-01-02"

// DB wraps a sql.DB with catalog-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+"_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Count returns the number of documents in c.
func (db *DB) Count(ctx context.Context, c Collection) (int, error) {
	switch c {
	case Authors, Genres, Books, BookInstances:
	default:
		return 0, fmt.Errorf("store: count: unknown collection %q", c)
	}
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM `+string(c)).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count %s: %w", c, err)
	}
	return n, nil
}

// checkID rejects identifiers that the store could never have generated.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("store: %q: %w", id, apperr.ErrInvalidID)
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

// affectedOne maps a zero-row write to apperr.ErrNotFound.
func affectedOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("store: %s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDate(ns sql.NullString) (time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: bad date %q: %w", ns.String, err)
	}
	return t, nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
