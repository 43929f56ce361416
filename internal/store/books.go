package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/models"
)

const bookColumns = `id, title, author_id, summary, isbn`

// GetBook returns the book with its genre references, or apperr.ErrNotFound.
func (db *DB) GetBook(ctx context.Context, id string) (models.Book, error) {
	if err := checkID(id); err != nil {
		return models.Book{}, err
	}
	books, err := db.queryBooks(ctx, `WHERE id = ?`, id)
	if err != nil {
		return models.Book{}, err
	}
	if len(books) == 0 {
		return models.Book{}, fmt.Errorf("store: book %s: %w", id, apperr.ErrNotFound)
	}
	return books[0], nil
}

// ListBooks returns every book ordered by title.
func (db *DB) ListBooks(ctx context.Context) ([]models.Book, error) {
	return db.queryBooks(ctx, ``)
}

// ListBooksByAuthor returns the books whose author is authorID.
func (db *DB) ListBooksByAuthor(ctx context.Context, authorID string) ([]models.Book, error) {
	if err := checkID(authorID); err != nil {
		return nil, err
	}
	return db.queryBooks(ctx, `WHERE author_id = ?`, authorID)
}

// ListBooksByGenre returns the books whose genre set contains genreID.
func (db *DB) ListBooksByGenre(ctx context.Context, genreID string) ([]models.Book, error) {
	if err := checkID(genreID); err != nil {
		return nil, err
	}
	return db.queryBooks(ctx, `WHERE id IN (SELECT book_id FROM book_genres WHERE genre_id = ?)`, genreID)
}

func (db *DB) queryBooks(ctx context.Context, where string, args ...any) ([]models.Book, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+bookColumns+` FROM books `+where+` ORDER BY title`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list books: %w", err)
	}
	defer rows.Close()

	out := []models.Book{}
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.AuthorID, &b.Summary, &b.ISBN); err != nil {
			return nil, fmt.Errorf("store: list books: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list books: %w", err)
	}
	if err := db.attachGenres(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachGenres fills GenreIDs for books in insertion order of the references.
func (db *DB) attachGenres(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}
	args := make([]any, len(books))
	pos := make(map[string]int, len(books))
	for i, b := range books {
		args[i] = b.ID
		pos[b.ID] = i
		books[i].GenreIDs = []string{}
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT book_id, genre_id FROM book_genres WHERE book_id IN (`+placeholders(len(books))+`) ORDER BY rowid`, args...)
	if err != nil {
		return fmt.Errorf("store: book genres: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bookID, genreID string
		if err := rows.Scan(&bookID, &genreID); err != nil {
			return fmt.Errorf("store: book genres: %w", err)
		}
		i := pos[bookID]
		books[i].GenreIDs = append(books[i].GenreIDs, genreID)
	}
	return rows.Err()
}

// InsertBook stores b and its genre references in one transaction.
func (db *DB) InsertBook(ctx context.Context, b models.Book) (models.Book, error) {
	if err := checkBookRefs(b); err != nil {
		return models.Book{}, err
	}
	b.ID = newID()
	b.GenreIDs = nonNilSlice(b.GenreIDs)
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO books (`+bookColumns+`) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.Title, b.AuthorID, b.Summary, b.ISBN); err != nil {
			return fmt.Errorf("store: insert book: %w", err)
		}
		return writeBookGenres(ctx, tx, b)
	})
	if err != nil {
		return models.Book{}, err
	}
	return b, nil
}

// ReplaceBook overwrites the book identified by b.ID, genre references included.
func (db *DB) ReplaceBook(ctx context.Context, b models.Book) error {
	if err := checkID(b.ID); err != nil {
		return err
	}
	if err := checkBookRefs(b); err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE books SET title = ?, author_id = ?, summary = ?, isbn = ?
			WHERE id = ?
		`, b.Title, b.AuthorID, b.Summary, b.ISBN, b.ID)
		if err != nil {
			return fmt.Errorf("store: replace book: %w", err)
		}
		if err := affectedOne(res, "replace book"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = ?`, b.ID); err != nil {
			return fmt.Errorf("store: replace book genres: %w", err)
		}
		return writeBookGenres(ctx, tx, b)
	})
}

// DeleteBook removes the book and its genre references. Copies are untouched.
func (db *DB) DeleteBook(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = ?`, id); err != nil {
			return fmt.Errorf("store: delete book genres: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("store: delete book: %w", err)
		}
		return affectedOne(res, "delete book")
	})
}

func checkBookRefs(b models.Book) error {
	if err := checkID(b.AuthorID); err != nil {
		return err
	}
	for _, id := range b.GenreIDs {
		if err := checkID(id); err != nil {
			return err
		}
	}
	return nil
}

func writeBookGenres(ctx context.Context, tx *sql.Tx, b models.Book) error {
	if len(b.GenreIDs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO book_genres (book_id, genre_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare genre insert: %w", err)
	}
	defer stmt.Close()
	for _, genreID := range b.GenreIDs {
		if _, err := stmt.ExecContext(ctx, b.ID, genreID); err != nil {
			return fmt.Errorf("store: insert book genre: %w", err)
		}
	}
	return nil
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
