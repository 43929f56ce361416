package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/models"
)

const authorColumns = `id, first_name, family_name, date_of_birth, date_of_death`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthor(row rowScanner) (models.Author, error) {
	var (
		a          models.Author
		born, died sql.NullString
	)
	if err := row.Scan(&a.ID, &a.FirstName, &a.FamilyName, &born, &died); err != nil {
		return models.Author{}, err
	}
	var err error
	if a.DateOfBirth, err = parseDate(born); err != nil {
		return models.Author{}, err
	}
	if a.DateOfDeath, err = parseDate(died); err != nil {
		return models.Author{}, err
	}
	return a, nil
}

// GetAuthor returns the author with the given id or apperr.ErrNotFound.
func (db *DB) GetAuthor(ctx context.Context, id string) (models.Author, error) {
	if err := checkID(id); err != nil {
		return models.Author{}, err
	}
	row := db.conn.QueryRowContext(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = ?`, id)
	a, err := scanAuthor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Author{}, fmt.Errorf("store: author %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Author{}, fmt.Errorf("store: get author: %w", err)
	}
	return a, nil
}

// ListAuthors returns every author ordered by family name.
func (db *DB) ListAuthors(ctx context.Context) ([]models.Author, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY family_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("store: list authors: %w", err)
	}
	defer rows.Close()

	out := []models.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list authors: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertAuthor stores a as a new document and returns it with its generated id.
func (db *DB) InsertAuthor(ctx context.Context, a models.Author) (models.Author, error) {
	a.ID = newID()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO authors (`+authorColumns+`) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.FirstName, a.FamilyName, nullDate(a.DateOfBirth), nullDate(a.DateOfDeath))
	if err != nil {
		return models.Author{}, fmt.Errorf("store: insert author: %w", err)
	}
	return a, nil
}

// ReplaceAuthor overwrites every field of the author identified by a.ID.
func (db *DB) ReplaceAuthor(ctx context.Context, a models.Author) error {
	if err := checkID(a.ID); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE authors
		SET first_name = ?, family_name = ?, date_of_birth = ?, date_of_death = ?
		WHERE id = ?
	`, a.FirstName, a.FamilyName, nullDate(a.DateOfBirth), nullDate(a.DateOfDeath), a.ID)
	if err != nil {
		return fmt.Errorf("store: replace author: %w", err)
	}
	return affectedOne(res, "replace author")
}

// DeleteAuthor removes the author. It does not look at the author's books.
func (db *DB) DeleteAuthor(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete author: %w", err)
	}
	return affectedOne(res, "delete author")
}
