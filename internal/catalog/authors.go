package catalog

import (
	"context"
	"net/url"

	"github.com/starford/libris/internal/aggregate"
	"github.com/starford/libris/internal/form"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
)

// AuthorsURL is the author collection location.
const AuthorsURL = "/catalog/authors"

const maxNameLength = 100

var authorSchema = form.Schema{
	form.Text("first_name",
		form.Required("First name must be specified."),
		form.MaxLength(maxNameLength, "First name must be at most 100 characters."),
		form.Alphanumeric("First name has non-alphanumeric characters.")),
	form.Text("family_name",
		form.Required("Family name must be specified."),
		form.MaxLength(maxNameLength, "Family name must be at most 100 characters."),
		form.Alphanumeric("Family name has non-alphanumeric characters.")),
	form.Date("date_of_birth", form.ISO8601("Invalid date of birth")).Optional(),
	form.Date("date_of_death", form.ISO8601("Invalid date of death")).Optional(),
}

// AuthorDetail is an author together with their books.
type AuthorDetail struct {
	Author models.Author `json:"author"`
	Books  []models.Book `json:"author_books"`
}

func buildAuthor(res form.Result, id string) models.Author {
	return models.Author{
		ID:          id,
		FirstName:   res.Text("first_name"),
		FamilyName:  res.Text("family_name"),
		DateOfBirth: res.Date("date_of_birth"),
		DateOfDeath: res.Date("date_of_death"),
	}
}

func authorID(a models.Author) string { return a.ID }

// ListAuthors returns every author ordered by family name.
func (s *Service) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return s.db.ListAuthors(ctx)
}

// AuthorDetail loads the author and their books concurrently.
func (s *Service) AuthorDetail(ctx context.Context, id string) (AuthorDetail, error) {
	res, err := s.assemble(ctx, "author_detail", map[string]aggregate.Lookup{
		"author":       aggregate.Of(func(ctx context.Context) (models.Author, error) { return s.db.GetAuthor(ctx, id) }),
		"author_books": aggregate.Of(func(ctx context.Context) ([]models.Book, error) { return s.db.ListBooksByAuthor(ctx, id) }),
	})
	if err != nil {
		return AuthorDetail{}, err
	}
	return AuthorDetail{
		Author: aggregate.Get[models.Author](res, "author"),
		Books:  aggregate.Get[[]models.Book](res, "author_books"),
	}, nil
}

// Author returns a single author for the update form.
func (s *Service) Author(ctx context.Context, id string) (models.Author, error) {
	return s.db.GetAuthor(ctx, id)
}

// CreateAuthor validates fields and inserts an author.
func (s *Service) CreateAuthor(ctx context.Context, fields url.Values) (pipeline.MutationResult[models.Author], error) {
	m := pipeline.Mutation[models.Author]{
		Schema:   authorSchema,
		Build:    buildAuthor,
		Save:     s.db.InsertAuthor,
		Location: models.Author.URL,
	}
	return mutate(ctx, s, EntityAuthor, "create", m, fields, "", authorID)
}

// UpdateAuthor replaces the author identified by id.
func (s *Service) UpdateAuthor(ctx context.Context, id string, fields url.Values) (pipeline.MutationResult[models.Author], error) {
	m := pipeline.Mutation[models.Author]{
		Schema: authorSchema,
		Build:  buildAuthor,
		Save: func(ctx context.Context, a models.Author) (models.Author, error) {
			return a, s.db.ReplaceAuthor(ctx, a)
		},
		Location: func(models.Author) string { return AuthorsURL },
	}
	return mutate(ctx, s, EntityAuthor, "update", m, fields, id, authorID)
}

func (s *Service) authorDeletion() pipeline.Deletion[models.Author, models.Book] {
	return pipeline.Deletion[models.Author, models.Book]{
		Find:       s.db.GetAuthor,
		Dependents: s.db.ListBooksByAuthor,
		Remove:     s.db.DeleteAuthor,
	}
}

// PreviewDeleteAuthor reports whether the author can be deleted.
func (s *Service) PreviewDeleteAuthor(ctx context.Context, id string) (pipeline.DeletionResult[models.Author, models.Book], error) {
	return s.authorDeletion().Preview(ctx, id)
}

// DeleteAuthor deletes the author unless books still reference them.
func (s *Service) DeleteAuthor(ctx context.Context, id string) (pipeline.DeletionResult[models.Author, models.Book], error) {
	return remove(ctx, s, EntityAuthor, s.authorDeletion(), id)
}
