package catalog

import (
	"context"
	"net/url"

	"github.com/starford/libris/internal/aggregate"
	"github.com/starford/libris/internal/form"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
)

// GenresURL is the genre collection location.
const GenresURL = "/catalog/genres"

var (
	genreCreateSchema = form.Schema{
		form.Text("name", form.Required("Genre name required")),
	}
	genreUpdateSchema = form.Schema{
		form.Text("name",
			form.Required("Name must be specified."),
			form.Alphanumeric("Name has non-alphanumeric characters.")),
	}
)

// GenreDetail is a genre together with the books carrying it.
type GenreDetail struct {
	Genre models.Genre  `json:"genre"`
	Books []models.Book `json:"genre_books"`
}

func buildGenre(res form.Result, id string) models.Genre {
	return models.Genre{ID: id, Name: res.Text("name")}
}

func genreID(g models.Genre) string { return g.ID }

// ListGenres returns every genre ordered by name.
func (s *Service) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.db.ListGenres(ctx)
}

// GenreDetail loads the genre and its books concurrently.
func (s *Service) GenreDetail(ctx context.Context, id string) (GenreDetail, error) {
	res, err := s.assemble(ctx, "genre_detail", map[string]aggregate.Lookup{
		"genre":       aggregate.Of(func(ctx context.Context) (models.Genre, error) { return s.db.GetGenre(ctx, id) }),
		"genre_books": aggregate.Of(func(ctx context.Context) ([]models.Book, error) { return s.db.ListBooksByGenre(ctx, id) }),
	})
	if err != nil {
		return GenreDetail{}, err
	}
	return GenreDetail{
		Genre: aggregate.Get[models.Genre](res, "genre"),
		Books: aggregate.Get[[]models.Book](res, "genre_books"),
	}, nil
}

// Genre returns a single genre for the update form.
func (s *Service) Genre(ctx context.Context, id string) (models.Genre, error) {
	return s.db.GetGenre(ctx, id)
}

// CreateGenre validates fields and inserts a genre unless one with the same
// name already exists, in which case the result points at that genre.
func (s *Service) CreateGenre(ctx context.Context, fields url.Values) (pipeline.MutationResult[models.Genre], error) {
	m := pipeline.Mutation[models.Genre]{
		Schema: genreCreateSchema,
		Build:  buildGenre,
		FindExisting: func(ctx context.Context, g models.Genre) (models.Genre, error) {
			return s.db.FindGenreByName(ctx, g.Name)
		},
		Save:     s.db.InsertGenre,
		Location: models.Genre.URL,
	}
	return mutate(ctx, s, EntityGenre, "create", m, fields, "", genreID)
}

// UpdateGenre replaces the genre identified by id. Name uniqueness is only
// enforced on create.
func (s *Service) UpdateGenre(ctx context.Context, id string, fields url.Values) (pipeline.MutationResult[models.Genre], error) {
	m := pipeline.Mutation[models.Genre]{
		Schema: genreUpdateSchema,
		Build:  buildGenre,
		Save: func(ctx context.Context, g models.Genre) (models.Genre, error) {
			return g, s.db.ReplaceGenre(ctx, g)
		},
		Location: func(models.Genre) string { return GenresURL },
	}
	return mutate(ctx, s, EntityGenre, "update", m, fields, id, genreID)
}

func (s *Service) genreDeletion() pipeline.Deletion[models.Genre, models.Book] {
	return pipeline.Deletion[models.Genre, models.Book]{
		Find:       s.db.GetGenre,
		Dependents: s.db.ListBooksByGenre,
		Remove:     s.db.DeleteGenre,
	}
}

// PreviewDeleteGenre reports whether the genre can be deleted.
func (s *Service) PreviewDeleteGenre(ctx context.Context, id string) (pipeline.DeletionResult[models.Genre, models.Book], error) {
	return s.genreDeletion().Preview(ctx, id)
}

// DeleteGenre deletes the genre unless books still carry it.
func (s *Service) DeleteGenre(ctx context.Context, id string) (pipeline.DeletionResult[models.Genre, models.Book], error) {
	return remove(ctx, s, EntityGenre, s.genreDeletion(), id)
}
