package store

import (
	"context"

	"github.com/starford/libris/internal/models"
)

// Catalog defines the entity store operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Catalog interface {
	GetAuthor(ctx context.Context, id string) (models.Author, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)
	InsertAuthor(ctx context.Context, a models.Author) (models.Author, error)
	ReplaceAuthor(ctx context.Context, a models.Author) error
	DeleteAuthor(ctx context.Context, id string) error

	GetGenre(ctx context.Context, id string) (models.Genre, error)
	FindGenreByName(ctx context.Context, name string) (models.Genre, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListGenresByID(ctx context.Context, ids []string) ([]models.Genre, error)
	InsertGenre(ctx context.Context, g models.Genre) (models.Genre, error)
	ReplaceGenre(ctx context.Context, g models.Genre) error
	DeleteGenre(ctx context.Context, id string) error

	GetBook(ctx context.Context, id string) (models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	ListBooksByAuthor(ctx context.Context, authorID string) ([]models.Book, error)
	ListBooksByGenre(ctx context.Context, genreID string) ([]models.Book, error)
	InsertBook(ctx context.Context, b models.Book) (models.Book, error)
	ReplaceBook(ctx context.Context, b models.Book) error
	DeleteBook(ctx context.Context, id string) error

	GetBookInstance(ctx context.Context, id string) (models.BookInstance, error)
	ListBookInstances(ctx context.Context) ([]models.BookInstance, error)
	ListBookInstancesByBook(ctx context.Context, bookID string) ([]models.BookInstance, error)
	CountBookInstancesByStatus(ctx context.Context, s models.Status) (int, error)
	InsertBookInstance(ctx context.Context, bi models.BookInstance) (models.BookInstance, error)
	ReplaceBookInstance(ctx context.Context, bi models.BookInstance) error
	DeleteBookInstance(ctx context.Context, id string) error

	Count(ctx context.Context, c Collection) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
