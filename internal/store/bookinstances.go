package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/models"
)

const instanceColumns = `id, book_id, imprint, status, due_back`

func scanInstance(row rowScanner) (models.BookInstance, error) {
	var (
		bi  models.BookInstance
		due sql.NullString
	)
	if err := row.Scan(&bi.ID, &bi.BookID, &bi.Imprint, &bi.Status, &due); err != nil {
		return models.BookInstance{}, err
	}
	var err error
	if bi.DueBack, err = parseDate(due); err != nil {
		return models.BookInstance{}, err
	}
	return bi, nil
}

// GetBookInstance returns the copy with the given id or apperr.ErrNotFound.
func (db *DB) GetBookInstance(ctx context.Context, id string) (models.BookInstance, error) {
	if err := checkID(id); err != nil {
		return models.BookInstance{}, err
	}
	row := db.conn.QueryRowContext(ctx, `SELECT `+instanceColumns+` FROM bookinstances WHERE id = ?`, id)
	bi, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BookInstance{}, fmt.Errorf("store: book instance %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.BookInstance{}, fmt.Errorf("store: get book instance: %w", err)
	}
	return bi, nil
}

// ListBookInstances returns every copy.
func (db *DB) ListBookInstances(ctx context.Context) ([]models.BookInstance, error) {
	return db.queryInstances(ctx, ``)
}

// ListBookInstancesByBook returns the copies of bookID.
func (db *DB) ListBookInstancesByBook(ctx context.Context, bookID string) ([]models.BookInstance, error) {
	if err := checkID(bookID); err != nil {
		return nil, err
	}
	return db.queryInstances(ctx, `WHERE book_id = ?`, bookID)
}

// CountBookInstancesByStatus returns how many copies are in status s.
func (db *DB) CountBookInstancesByStatus(ctx context.Context, s models.Status) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM bookinstances WHERE status = ?`, string(s)).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count book instances: %w", err)
	}
	return n, nil
}

func (db *DB) queryInstances(ctx context.Context, where string, args ...any) ([]models.BookInstance, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+instanceColumns+` FROM bookinstances `+where+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list book instances: %w", err)
	}
	defer rows.Close()

	out := []models.BookInstance{}
	for rows.Next() {
		bi, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list book instances: %w", err)
		}
		out = append(out, bi)
	}
	return out, rows.Err()
}

// InsertBookInstance stores bi as a new copy and returns it with its id.
func (db *DB) InsertBookInstance(ctx context.Context, bi models.BookInstance) (models.BookInstance, error) {
	if err := checkID(bi.BookID); err != nil {
		return models.BookInstance{}, err
	}
	bi.ID = newID()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO bookinstances (`+instanceColumns+`) VALUES (?, ?, ?, ?, ?)`,
		bi.ID, bi.BookID, bi.Imprint, string(bi.Status), nullDate(bi.DueBack))
	if err != nil {
		return models.BookInstance{}, fmt.Errorf("store: insert book instance: %w", err)
	}
	return bi, nil
}

// ReplaceBookInstance overwrites the copy identified by bi.ID.
func (db *DB) ReplaceBookInstance(ctx context.Context, bi models.BookInstance) error {
	if err := checkID(bi.ID); err != nil {
		return err
	}
	if err := checkID(bi.BookID); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE bookinstances SET book_id = ?, imprint = ?, status = ?, due_back = ?
		WHERE id = ?
	`, bi.BookID, bi.Imprint, string(bi.Status), nullDate(bi.DueBack), bi.ID)
	if err != nil {
		return fmt.Errorf("store: replace book instance: %w", err)
	}
	return affectedOne(res, "replace book instance")
}

// DeleteBookInstance removes the copy.
func (db *DB) DeleteBookInstance(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, `DELETE FROM bookinstances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete book instance: %w", err)
	}
	return affectedOne(res, "delete book instance")
}
