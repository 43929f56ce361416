package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/models"
)

// GetGenre returns the genre with the given id or apperr.ErrNotFound.
func (db *DB) GetGenre(ctx context.Context, id string) (models.Genre, error) {
	if err := checkID(id); err != nil {
		return models.Genre{}, err
	}
	var g models.Genre
	err := db.conn.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = ?`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Genre{}, fmt.Errorf("store: genre %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Genre{}, fmt.Errorf("store: get genre: %w", err)
	}
	return g, nil
}

// FindGenreByName returns the first genre whose name equals name exactly.
func (db *DB) FindGenreByName(ctx context.Context, name string) (models.Genre, error) {
	var g models.Genre
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM genres WHERE name = ? ORDER BY rowid LIMIT 1`, name).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Genre{}, fmt.Errorf("store: genre named %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Genre{}, fmt.Errorf("store: find genre: %w", err)
	}
	return g, nil
}

// ListGenres returns every genre ordered by name.
func (db *DB) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return db.queryGenres(ctx, `SELECT id, name FROM genres ORDER BY name`)
}

// ListGenresByID returns the genres among ids that exist, ordered by name.
// Unknown ids are skipped.
func (db *DB) ListGenresByID(ctx context.Context, ids []string) ([]models.Genre, error) {
	if len(ids) == 0 {
		return []models.Genre{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return db.queryGenres(ctx,
		`SELECT id, name FROM genres WHERE id IN (`+placeholders(len(ids))+`) ORDER BY name`, args...)
}

func (db *DB) queryGenres(ctx context.Context, query string, args ...any) ([]models.Genre, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list genres: %w", err)
	}
	defer rows.Close()

	out := []models.Genre{}
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("store: list genres: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// InsertGenre stores g as a new document. Names are not unique at this layer.
func (db *DB) InsertGenre(ctx context.Context, g models.Genre) (models.Genre, error) {
	g.ID = newID()
	if _, err := db.conn.ExecContext(ctx, `INSERT INTO genres (id, name) VALUES (?, ?)`, g.ID, g.Name); err != nil {
		return models.Genre{}, fmt.Errorf("store: insert genre: %w", err)
	}
	return g, nil
}

// ReplaceGenre overwrites the genre identified by g.ID.
func (db *DB) ReplaceGenre(ctx context.Context, g models.Genre) error {
	if err := checkID(g.ID); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE genres SET name = ? WHERE id = ?`, g.Name, g.ID)
	if err != nil {
		return fmt.Errorf("store: replace genre: %w", err)
	}
	return affectedOne(res, "replace genre")
}

// DeleteGenre removes the genre. Book references to it are left untouched.
func (db *DB) DeleteGenre(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete genre: %w", err)
	}
	return affectedOne(res, "delete genre")
}
