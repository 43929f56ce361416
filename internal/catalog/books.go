package catalog

import (
	"context"
	"errors"
	"net/url"

	"github.com/starford/libris/internal/aggregate"
	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/form"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
)

// BooksURL is the book collection location.
const BooksURL = "/catalog/books"

var bookSchema = form.Schema{
	form.Text("title", form.Required("Title must not be empty.")),
	form.Text("author", form.Required("Author must not be empty.")),
	form.Text("summary", form.Required("Summary must not be empty.")),
	form.Text("isbn", form.Required("ISBN must not be empty.")),
	form.List("genre"),
}

// BookEntry is one row of the book list.
type BookEntry struct {
	Book   models.Book   `json:"book"`
	Author models.Author `json:"author"`
}

// BookDetail is a book with its author, genres and copies resolved.
type BookDetail struct {
	Book   models.Book           `json:"book"`
	Author models.Author         `json:"author"`
	Genres []models.Genre        `json:"genres"`
	Copies []models.BookInstance `json:"book_instances"`
}

// BookForm is what the book form needs to render.
type BookForm struct {
	Book    models.Book     `json:"book"`
	Authors []models.Author `json:"authors"`
	Genres  []models.Genre  `json:"genres"`
}

func buildBook(res form.Result, id string) models.Book {
	return models.Book{
		ID:       id,
		Title:    res.Text("title"),
		AuthorID: res.Text("author"),
		Summary:  res.Text("summary"),
		ISBN:     res.Text("isbn"),
		GenreIDs: res.List("genre"),
	}
}

func bookID(b models.Book) string { return b.ID }

func (s *Service) bookRefs() map[string]aggregate.Lookup {
	return map[string]aggregate.Lookup{
		RefAuthors: aggregate.Of(s.db.ListAuthors),
		RefGenres:  aggregate.Of(s.db.ListGenres),
	}
}

// optionalAuthor resolves a book's author, tolerating a dangling reference.
func (s *Service) optionalAuthor(ctx context.Context, id string) (models.Author, error) {
	a, err := s.db.GetAuthor(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidID) {
		return models.Author{ID: id}, nil
	}
	return a, err
}

// ListBooks returns every book with its author resolved.
func (s *Service) ListBooks(ctx context.Context) ([]BookEntry, error) {
	res, err := s.assemble(ctx, "book_list", map[string]aggregate.Lookup{
		"books":   aggregate.Of(s.db.ListBooks),
		"authors": aggregate.Of(s.db.ListAuthors),
	})
	if err != nil {
		return nil, err
	}
	authors := make(map[string]models.Author)
	for _, a := range aggregate.Get[[]models.Author](res, "authors") {
		authors[a.ID] = a
	}
	books := aggregate.Get[[]models.Book](res, "books")
	out := make([]BookEntry, len(books))
	for i, b := range books {
		out[i] = BookEntry{Book: b, Author: authors[b.AuthorID]}
	}
	return out, nil
}

// BookDetail loads the book and its copies, then its author and genres.
func (s *Service) BookDetail(ctx context.Context, id string) (BookDetail, error) {
	res, err := s.assemble(ctx, "book_detail", map[string]aggregate.Lookup{
		"book":           aggregate.Of(func(ctx context.Context) (models.Book, error) { return s.db.GetBook(ctx, id) }),
		"book_instances": aggregate.Of(func(ctx context.Context) ([]models.BookInstance, error) { return s.db.ListBookInstancesByBook(ctx, id) }),
	})
	if err != nil {
		return BookDetail{}, err
	}
	book := aggregate.Get[models.Book](res, "book")

	refs, err := s.assemble(ctx, "book_detail_refs", map[string]aggregate.Lookup{
		"author": aggregate.Of(func(ctx context.Context) (models.Author, error) { return s.optionalAuthor(ctx, book.AuthorID) }),
		"genres": aggregate.Of(func(ctx context.Context) ([]models.Genre, error) { return s.db.ListGenresByID(ctx, book.GenreIDs) }),
	})
	if err != nil {
		return BookDetail{}, err
	}
	return BookDetail{
		Book:   book,
		Author: aggregate.Get[models.Author](refs, "author"),
		Genres: aggregate.Get[[]models.Genre](refs, "genres"),
		Copies: aggregate.Get[[]models.BookInstance](res, "book_instances"),
	}, nil
}

// NewBookForm loads the reference lists for an empty book form.
func (s *Service) NewBookForm(ctx context.Context) (BookForm, error) {
	res, err := s.assemble(ctx, "book_form", s.bookRefs())
	if err != nil {
		return BookForm{}, err
	}
	return BookForm{
		Authors: aggregate.Get[[]models.Author](res, RefAuthors),
		Genres:  aggregate.Get[[]models.Genre](res, RefGenres),
	}, nil
}

// EditBookForm loads the book and the reference lists concurrently.
func (s *Service) EditBookForm(ctx context.Context, id string) (BookForm, error) {
	lookups := s.bookRefs()
	lookups["book"] = aggregate.Of(func(ctx context.Context) (models.Book, error) { return s.db.GetBook(ctx, id) })

	res, err := s.assemble(ctx, "book_form", lookups)
	if err != nil {
		return BookForm{}, err
	}
	return BookForm{
		Book:    aggregate.Get[models.Book](res, "book"),
		Authors: aggregate.Get[[]models.Author](res, RefAuthors),
		Genres:  aggregate.Get[[]models.Genre](res, RefGenres),
	}, nil
}

// CreateBook validates fields and inserts a book.
func (s *Service) CreateBook(ctx context.Context, fields url.Values) (pipeline.MutationResult[models.Book], error) {
	m := pipeline.Mutation[models.Book]{
		Schema:   bookSchema,
		Build:    buildBook,
		Refs:     s.bookRefs(),
		Save:     s.db.InsertBook,
		Location: models.Book.URL,
	}
	return mutate(ctx, s, EntityBook, "create", m, fields, "", bookID)
}

// UpdateBook replaces the book identified by id, genre set included.
func (s *Service) UpdateBook(ctx context.Context, id string, fields url.Values) (pipeline.MutationResult[models.Book], error) {
	m := pipeline.Mutation[models.Book]{
		Schema: bookSchema,
		Build:  buildBook,
		Refs:   s.bookRefs(),
		Save: func(ctx context.Context, b models.Book) (models.Book, error) {
			return b, s.db.ReplaceBook(ctx, b)
		},
		Location: func(models.Book) string { return BooksURL },
	}
	return mutate(ctx, s, EntityBook, "update", m, fields, id, bookID)
}

func (s *Service) bookDeletion() pipeline.Deletion[models.Book, models.BookInstance] {
	return pipeline.Deletion[models.Book, models.BookInstance]{
		Find:       s.db.GetBook,
		Dependents: s.db.ListBookInstancesByBook,
		Remove:     s.db.DeleteBook,
	}
}

// PreviewDeleteBook reports whether the book can be deleted.
func (s *Service) PreviewDeleteBook(ctx context.Context, id string) (pipeline.DeletionResult[models.Book, models.BookInstance], error) {
	return s.bookDeletion().Preview(ctx, id)
}

// DeleteBook deletes the book unless copies of it exist.
func (s *Service) DeleteBook(ctx context.Context, id string) (pipeline.DeletionResult[models.Book, models.BookInstance], error) {
	return remove(ctx, s, EntityBook, s.bookDeletion(), id)
}
