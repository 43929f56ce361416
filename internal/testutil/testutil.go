// Package testutil provides shared test helpers for setting up a catalog
// database and seeding it.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "libris-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Fixture is a small catalog: one author with one book tagged with one
// genre, and one available copy of that book. Spare is a genre nothing uses.
type Fixture struct {
	Author models.Author
	Genre  models.Genre
	Spare  models.Genre
	Book   models.Book
	Copy   models.BookInstance
}

// Seed inserts a Fixture into db.
func Seed(t *testing.T, db *store.DB) Fixture {
	t.Helper()
	ctx := context.Background()
	var (
		fx  Fixture
		err error
	)

	fx.Author, err = db.InsertAuthor(ctx, models.Author{
		FirstName:   "Patrick",
		FamilyName:  "Rothfuss",
		DateOfBirth: time.Date(1973, 6, 6, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if fx.Genre, err = db.InsertGenre(ctx, models.Genre{Name: "Fantasy"}); err != nil {
		t.Fatalf("seed genre: %v", err)
	}
	if fx.Spare, err = db.InsertGenre(ctx, models.Genre{Name: "Poetry"}); err != nil {
		t.Fatalf("seed genre: %v", err)
	}
	fx.Book, err = db.InsertBook(ctx, models.Book{
		Title:    "The Name of the Wind",
		AuthorID: fx.Author.ID,
		Summary:  "A hero tells his story.",
		ISBN:     "9781473211896",
		GenreIDs: []string{fx.Genre.ID},
	})
	if err != nil {
		t.Fatalf("seed book: %v", err)
	}
	fx.Copy, err = db.InsertBookInstance(ctx, models.BookInstance{
		BookID:  fx.Book.ID,
		Imprint: "Gollancz, 2011.",
		Status:  models.StatusAvailable,
	})
	if err != nil {
		t.Fatalf("seed copy: %v", err)
	}
	return fx
}
