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

// BookInstancesURL is the copy collection location.
const BookInstancesURL = "/catalog/bookinstances"

var bookInstanceSchema = form.Schema{
	form.Text("book", form.Required("Book must be specified")),
	form.Text("imprint", form.Required("Imprint must be specified")),
	form.Text("status", form.OneOf("Invalid status", statusNames()...)).Optional(),
	form.Date("due_back", form.ISO8601("Invalid date")).Optional(),
}

func statusNames() []string {
	out := make([]string, len(models.Statuses))
	for i, st := range models.Statuses {
		out[i] = string(st)
	}
	return out
}

// CopyEntry is a copy with its book resolved.
type CopyEntry struct {
	Copy models.BookInstance `json:"bookinstance"`
	Book models.Book         `json:"book"`
}

// CopyForm is what the book instance form needs to render.
type CopyForm struct {
	Copy  models.BookInstance `json:"bookinstance"`
	Books []models.Book       `json:"book_list"`
}

func buildBookInstance(res form.Result, id string) models.BookInstance {
	status := models.Status(res.Text("status"))
	if status == "" {
		status = models.DefaultStatus
	}
	return models.BookInstance{
		ID:      id,
		BookID:  res.Text("book"),
		Imprint: res.Text("imprint"),
		Status:  status,
		DueBack: res.Date("due_back"),
	}
}

func bookInstanceID(bi models.BookInstance) string { return bi.ID }

func (s *Service) bookInstanceRefs() map[string]aggregate.Lookup {
	return map[string]aggregate.Lookup{
		RefBooks: aggregate.Of(s.db.ListBooks),
	}
}

// ListBookInstances returns every copy with its book resolved.
func (s *Service) ListBookInstances(ctx context.Context) ([]CopyEntry, error) {
	res, err := s.assemble(ctx, "bookinstance_list", map[string]aggregate.Lookup{
		"copies": aggregate.Of(s.db.ListBookInstances),
		"books":  aggregate.Of(s.db.ListBooks),
	})
	if err != nil {
		return nil, err
	}
	books := make(map[string]models.Book)
	for _, b := range aggregate.Get[[]models.Book](res, "books") {
		books[b.ID] = b
	}
	copies := aggregate.Get[[]models.BookInstance](res, "copies")
	out := make([]CopyEntry, len(copies))
	for i, c := range copies {
		book, ok := books[c.BookID]
		if !ok {
			book = models.Book{ID: c.BookID}
		}
		out[i] = CopyEntry{Copy: c, Book: book}
	}
	return out, nil
}

// BookInstanceDetail loads the copy and then its book.
func (s *Service) BookInstanceDetail(ctx context.Context, id string) (CopyEntry, error) {
	bi, err := s.db.GetBookInstance(ctx, id)
	if err != nil {
		return CopyEntry{}, err
	}
	book, err := s.db.GetBook(ctx, bi.BookID)
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrInvalidID):
		book = models.Book{ID: bi.BookID}
	case err != nil:
		return CopyEntry{}, err
	}
	return CopyEntry{Copy: bi, Book: book}, nil
}

// NewBookInstanceForm loads the book list for an empty copy form.
func (s *Service) NewBookInstanceForm(ctx context.Context) (CopyForm, error) {
	res, err := s.assemble(ctx, "bookinstance_form", s.bookInstanceRefs())
	if err != nil {
		return CopyForm{}, err
	}
	return CopyForm{
		Copy:  models.BookInstance{Status: models.DefaultStatus},
		Books: aggregate.Get[[]models.Book](res, RefBooks),
	}, nil
}

// EditBookInstanceForm loads the copy and the book list concurrently.
func (s *Service) EditBookInstanceForm(ctx context.Context, id string) (CopyForm, error) {
	lookups := s.bookInstanceRefs()
	lookups["bookinstance"] = aggregate.Of(func(ctx context.Context) (models.BookInstance, error) {
		return s.db.GetBookInstance(ctx, id)
	})

	res, err := s.assemble(ctx, "bookinstance_form", lookups)
	if err != nil {
		return CopyForm{}, err
	}
	return CopyForm{
		Copy:  aggregate.Get[models.BookInstance](res, "bookinstance"),
		Books: aggregate.Get[[]models.Book](res, RefBooks),
	}, nil
}

// CreateBookInstance validates fields and inserts a copy.
func (s *Service) CreateBookInstance(ctx context.Context, fields url.Values) (pipeline.MutationResult[models.BookInstance], error) {
	m := pipeline.Mutation[models.BookInstance]{
		Schema:   bookInstanceSchema,
		Build:    buildBookInstance,
		Refs:     s.bookInstanceRefs(),
		Save:     s.db.InsertBookInstance,
		Location: models.BookInstance.URL,
	}
	return mutate(ctx, s, EntityBookInstance, "create", m, fields, "", bookInstanceID)
}

// UpdateBookInstance replaces the copy identified by id.
func (s *Service) UpdateBookInstance(ctx context.Context, id string, fields url.Values) (pipeline.MutationResult[models.BookInstance], error) {
	m := pipeline.Mutation[models.BookInstance]{
		Schema: bookInstanceSchema,
		Build:  buildBookInstance,
		Refs:   s.bookInstanceRefs(),
		Save: func(ctx context.Context, bi models.BookInstance) (models.BookInstance, error) {
			return bi, s.db.ReplaceBookInstance(ctx, bi)
		},
		Location: func(models.BookInstance) string { return BookInstancesURL },
	}
	return mutate(ctx, s, EntityBookInstance, "update", m, fields, id, bookInstanceID)
}

func (s *Service) bookInstanceDeletion() pipeline.Deletion[models.BookInstance, pipeline.None] {
	return pipeline.Deletion[models.BookInstance, pipeline.None]{
		Find:   s.db.GetBookInstance,
		Remove: s.db.DeleteBookInstance,
	}
}

// PreviewDeleteBookInstance loads the copy for the delete confirmation page.
func (s *Service) PreviewDeleteBookInstance(ctx context.Context, id string) (pipeline.DeletionResult[models.BookInstance, pipeline.None], error) {
	return s.bookInstanceDeletion().Preview(ctx, id)
}

// DeleteBookInstance deletes the copy. Nothing references copies, so it is never blocked.
func (s *Service) DeleteBookInstance(ctx context.Context, id string) (pipeline.DeletionResult[models.BookInstance, pipeline.None], error) {
	return remove(ctx, s, EntityBookInstance, s.bookInstanceDeletion(), id)
}
