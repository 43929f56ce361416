package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "libris-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"authors", "genres", "books", "book_genres", "bookinstances"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestAuthorRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	born := time.Date(1920, time.January, 2, 0, 0, 0, 0, time.UTC)

	a, err := db.InsertAuthor(ctx, models.Author{FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: born})
	if err != nil {
		t.Fatalf("InsertAuthor: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := db.GetAuthor(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAuthor: %v", err)
	}
	if got.FamilyName != "Asimov" || !got.DateOfBirth.Equal(born) || !got.DateOfDeath.IsZero() {
		t.Errorf("got %+v", got)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	id := newID()

	if _, err := db.GetAuthor(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetAuthor err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetGenre(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetGenre err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetBook(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetBook err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetBookInstance(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetBookInstance err = %v, want ErrNotFound", err)
	}
}

func TestMalformedIDIsInvalid(t *testing.T) {
	db := testDB(t)
	_, err := db.GetGenre(context.Background(), "not-an-id")
	if !errors.Is(err, apperr.ErrInvalidID) {
		t.Errorf("err = %v, want ErrInvalidID", err)
	}
}

func TestMalformedReferenceIsRejected(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	g, _ := db.InsertGenre(ctx, models.Genre{Name: "Fantasy"})

	if _, err := db.InsertBook(ctx, models.Book{Title: "T", AuthorID: "nope"}); !errors.Is(err, apperr.ErrInvalidID) {
		t.Errorf("bad author err = %v, want ErrInvalidID", err)
	}
	if _, err := db.InsertBook(ctx, models.Book{Title: "T", AuthorID: newID(), GenreIDs: []string{g.ID, "bad-genre"}}); !errors.Is(err, apperr.ErrInvalidID) {
		t.Errorf("bad genre err = %v, want ErrInvalidID", err)
	}
	if _, err := db.InsertBookInstance(ctx, models.BookInstance{BookID: "garbage", Imprint: "X"}); !errors.Is(err, apperr.ErrInvalidID) {
		t.Errorf("bad book err = %v, want ErrInvalidID", err)
	}
	for _, c := range []Collection{Books, BookInstances} {
		if n, _ := db.Count(ctx, c); n != 0 {
			t.Errorf("%s count = %d, want 0", c, n)
		}
	}

	b, err := db.InsertBook(ctx, models.Book{Title: "T", AuthorID: newID(), GenreIDs: []string{g.ID}})
	if err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	b.GenreIDs = []string{"bad-genre"}
	if err := db.ReplaceBook(ctx, b); !errors.Is(err, apperr.ErrInvalidID) {
		t.Errorf("replace bad genre err = %v, want ErrInvalidID", err)
	}
	got, _ := db.GetBook(ctx, b.ID)
	if len(got.GenreIDs) != 1 || got.GenreIDs[0] != g.ID {
		t.Errorf("genre ids after rejected replace = %v", got.GenreIDs)
	}

	bi, _ := db.InsertBookInstance(ctx, models.BookInstance{BookID: b.ID, Imprint: "X", Status: models.StatusAvailable})
	bi.BookID = "garbage"
	if err := db.ReplaceBookInstance(ctx, bi); !errors.Is(err, apperr.ErrInvalidID) {
		t.Errorf("replace bad book err = %v, want ErrInvalidID", err)
	}
}

func TestOpenAppendsToExistingQuery(t *testing.T) {
	f, err := os.CreateTemp("", "libris-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open("file:" + f.Name() + "?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestFindGenreByName(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	g, _ := db.InsertGenre(ctx, models.Genre{Name: "Fiction"})

	found, err := db.FindGenreByName(ctx, "Fiction")
	if err != nil {
		t.Fatalf("FindGenreByName: %v", err)
	}
	if found.ID != g.ID {
		t.Errorf("found %s, want %s", found.ID, g.ID)
	}
	if _, err := db.FindGenreByName(ctx, "fiction"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("case-different lookup err = %v, want ErrNotFound", err)
	}
}

func TestBookGenresAndDependents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a, _ := db.InsertAuthor(ctx, models.Author{FirstName: "Ursula", FamilyName: "Le Guin"})
	fantasy, _ := db.InsertGenre(ctx, models.Genre{Name: "Fantasy"})
	scifi, _ := db.InsertGenre(ctx, models.Genre{Name: "Science Fiction"})

	b, err := db.InsertBook(ctx, models.Book{
		Title: "The Dispossessed", AuthorID: a.ID, Summary: "s", ISBN: "1",
		GenreIDs: []string{scifi.ID, fantasy.ID},
	})
	if err != nil {
		t.Fatalf("InsertBook: %v", err)
	}

	got, err := db.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if len(got.GenreIDs) != 2 || got.GenreIDs[0] != scifi.ID {
		t.Errorf("genre ids = %v", got.GenreIDs)
	}

	byGenre, err := db.ListBooksByGenre(ctx, fantasy.ID)
	if err != nil {
		t.Fatalf("ListBooksByGenre: %v", err)
	}
	if len(byGenre) != 1 || byGenre[0].ID != b.ID {
		t.Errorf("books by genre = %+v", byGenre)
	}

	byAuthor, _ := db.ListBooksByAuthor(ctx, a.ID)
	if len(byAuthor) != 1 {
		t.Errorf("books by author = %d, want 1", len(byAuthor))
	}

	genres, _ := db.ListGenresByID(ctx, got.GenreIDs)
	if len(genres) != 2 || genres[0].Name != "Fantasy" {
		t.Errorf("genres by id = %+v", genres)
	}
}

func TestReplaceBookRewritesGenres(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	g1, _ := db.InsertGenre(ctx, models.Genre{Name: "One"})
	g2, _ := db.InsertGenre(ctx, models.Genre{Name: "Two"})
	b, _ := db.InsertBook(ctx, models.Book{Title: "T", AuthorID: newID(), GenreIDs: []string{g1.ID}})

	b.Title = "T2"
	b.GenreIDs = []string{g2.ID}
	if err := db.ReplaceBook(ctx, b); err != nil {
		t.Fatalf("ReplaceBook: %v", err)
	}

	got, _ := db.GetBook(ctx, b.ID)
	if got.Title != "T2" || len(got.GenreIDs) != 1 || got.GenreIDs[0] != g2.ID {
		t.Errorf("after replace: %+v", got)
	}
	old, _ := db.ListBooksByGenre(ctx, g1.ID)
	if len(old) != 0 {
		t.Error("old genre reference should be removed")
	}
}

func TestReplaceMissingReturnsNotFound(t *testing.T) {
	db := testDB(t)
	err := db.ReplaceGenre(context.Background(), models.Genre{ID: newID(), Name: "x"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteTwice(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	g, _ := db.InsertGenre(ctx, models.Genre{Name: "Gone"})

	if err := db.DeleteGenre(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGenre: %v", err)
	}
	if err := db.DeleteGenre(ctx, g.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestBookInstancesAndCounts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	b, _ := db.InsertBook(ctx, models.Book{Title: "T", AuthorID: newID()})
	due := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)

	bi, err := db.InsertBookInstance(ctx, models.BookInstance{BookID: b.ID, Imprint: "First", Status: models.StatusLoaned, DueBack: due})
	if err != nil {
		t.Fatalf("InsertBookInstance: %v", err)
	}
	_, _ = db.InsertBookInstance(ctx, models.BookInstance{BookID: b.ID, Imprint: "Second", Status: models.StatusAvailable})

	got, _ := db.GetBookInstance(ctx, bi.ID)
	if got.Status != models.StatusLoaned || !got.DueBack.Equal(due) {
		t.Errorf("got %+v", got)
	}

	copies, _ := db.ListBookInstancesByBook(ctx, b.ID)
	if len(copies) != 2 {
		t.Errorf("copies = %d, want 2", len(copies))
	}
	n, _ := db.CountBookInstancesByStatus(ctx, models.StatusAvailable)
	if n != 1 {
		t.Errorf("available = %d, want 1", n)
	}
	total, _ := db.Count(ctx, BookInstances)
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if _, err := db.Count(ctx, Collection("users")); err == nil {
		t.Error("unknown collection should fail")
	}
}
