package catalog

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/metrics"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
	tu "github.com/starford/libris/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) PublishChange(kind, entity, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, entity+"."+kind)
}

func newService(t *testing.T) (*Service, tu.Fixture, *recorder, *metrics.Metrics) {
	t.Helper()
	db := tu.TestDB(t)
	fx := tu.Seed(t, db)
	rec := &recorder{}
	m := metrics.New()
	return NewService(db, WithMetrics(m), WithNotifier(rec)), fx, rec, m
}

func TestCreateGenre_ExistingNameRedirectsToIt(t *testing.T) {
	svc, _, rec, m := newService(t)
	ctx := context.Background()

	first, err := svc.CreateGenre(ctx, url.Values{"name": {"Fiction"}})
	require.NoError(t, err)
	require.Equal(t, pipeline.Redirect, first.Action)
	assert.False(t, first.Existing)
	assert.Equal(t, "/catalog/genre/"+first.Entity.ID, first.Location)

	second, err := svc.CreateGenre(ctx, url.Values{"name": {"  Fiction "}})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Redirect, second.Action)
	assert.True(t, second.Existing)
	assert.Equal(t, first.Location, second.Location)

	genres, err := svc.ListGenres(ctx)
	require.NoError(t, err)
	var fiction int
	for _, g := range genres {
		if g.Name == "Fiction" {
			fiction++
		}
	}
	assert.Equal(t, 1, fiction)
	assert.Equal(t, []string{"genre.created"}, rec.events)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Mutations.WithLabelValues(EntityGenre, "create", "existing")), 0)
}

func TestCreateGenre_BlankNameRedisplays(t *testing.T) {
	svc, _, rec, _ := newService(t)

	res, err := svc.CreateGenre(context.Background(), url.Values{"name": {"   "}})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Redisplay, res.Action)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "name", res.Failures[0].Field)
	assert.Equal(t, "Genre name required", res.Failures[0].Message)
	assert.Empty(t, rec.events)
}

func TestUpdateGenre_RejectsNonAlphanumeric(t *testing.T) {
	svc, fx, _, _ := newService(t)
	ctx := context.Background()

	res, err := svc.UpdateGenre(ctx, fx.Genre.ID, url.Values{"name": {"Sci Fi"}})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Redisplay, res.Action)
	assert.Equal(t, fx.Genre.ID, res.Entity.ID)

	res, err = svc.UpdateGenre(ctx, fx.Genre.ID, url.Values{"name": {"Fable"}})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Redirect, res.Action)
	assert.Equal(t, GenresURL, res.Location)

	g, err := svc.Genre(ctx, fx.Genre.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fable", g.Name)
}

func TestDeleteGenre_BlockedByBook(t *testing.T) {
	svc, fx, rec, _ := newService(t)
	ctx := context.Background()

	res, err := svc.DeleteGenre(ctx, fx.Genre.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Blocked, res.State)
	require.Len(t, res.Dependents, 1)
	assert.Equal(t, fx.Book.ID, res.Dependents[0].ID)

	_, err = svc.Genre(ctx, fx.Genre.ID)
	require.NoError(t, err, "blocked genre must survive")
	assert.Empty(t, rec.events)
}

func TestDeleteGenre_Idempotent(t *testing.T) {
	svc, fx, rec, _ := newService(t)
	ctx := context.Background()

	preview, err := svc.PreviewDeleteGenre(ctx, fx.Spare.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Confirmable, preview.State)

	res, err := svc.DeleteGenre(ctx, fx.Spare.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Deleted, res.State)

	res, err = svc.DeleteGenre(ctx, fx.Spare.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Gone, res.State)
	assert.Equal(t, []string{"genre.deleted"}, rec.events)
}

func TestCreateAuthor_Failures(t *testing.T) {
	svc, _, _, _ := newService(t)

	res, err := svc.CreateAuthor(context.Background(), url.Values{
		"first_name":    {"Jane!"},
		"family_name":   {""},
		"date_of_birth": {"1775-12-16"},
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Redisplay, res.Action)
	fields := map[string]bool{}
	for _, f := range res.Failures {
		fields[f.Field] = true
	}
	assert.Equal(t, map[string]bool{"first_name": true, "family_name": true}, fields)
	assert.Equal(t, 1775, res.Entity.DateOfBirth.Year())
}

func TestAuthorDetail(t *testing.T) {
	svc, fx, _, _ := newService(t)
	ctx := context.Background()

	d, err := svc.AuthorDetail(ctx, fx.Author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rothfuss, Patrick", d.Author.Name())
	require.Len(t, d.Books, 1)
	assert.Equal(t, fx.Book.ID, d.Books[0].ID)

	_, err = svc.AuthorDetail(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteAuthor_BlockedThenAllowed(t *testing.T) {
	svc, fx, _, _ := newService(t)
	ctx := context.Background()

	res, err := svc.DeleteAuthor(ctx, fx.Author.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Blocked, res.State)

	// Book is still blocked by its copy.
	bres, err := svc.DeleteBook(ctx, fx.Book.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Blocked, bres.State)

	cres, err := svc.DeleteBookInstance(ctx, fx.Copy.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Deleted, cres.State)

	bres, err = svc.DeleteBook(ctx, fx.Book.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Deleted, bres.State)

	res, err = svc.DeleteAuthor(ctx, fx.Author.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Deleted, res.State)
}

func TestCreateBook_RedisplayCarriesReferenceLists(t *testing.T) {
	svc, fx, _, _ := newService(t)

	res, err := svc.CreateBook(context.Background(), url.Values{
		"title":  {"<b>Untitled</b>"},
		"author": {fx.Author.ID},
		"genre":  {fx.Genre.ID, fx.Spare.ID},
	})
	require.NoError(t, err)
	require.Equal(t, pipeline.Redisplay, res.Action)
	assert.Len(t, res.Failures, 2)
	assert.Equal(t, "&lt;b&gt;Untitled&lt;&#x2F;b&gt;", res.Entity.Title)
	assert.True(t, res.Entity.HasGenre(fx.Spare.ID))

	authors, ok := res.Refs[RefAuthors].([]models.Author)
	require.True(t, ok)
	assert.Len(t, authors, 1)
	genres, ok := res.Refs[RefGenres].([]models.Genre)
	require.True(t, ok)
	assert.Len(t, genres, 2)
}

func TestCreateAndUpdateBook(t *testing.T) {
	svc, fx, rec, _ := newService(t)
	ctx := context.Background()

	res, err := svc.CreateBook(ctx, url.Values{
		"title":   {"The Wise Man's Fear"},
		"author":  {fx.Author.ID},
		"summary": {"Day two."},
		"isbn":    {"9780756407919"},
		"genre":   {fx.Genre.ID},
	})
	require.NoError(t, err)
	require.Equal(t, pipeline.Redirect, res.Action)
	assert.Equal(t, res.Entity.URL(), res.Location)

	up, err := svc.UpdateBook(ctx, res.Entity.ID, url.Values{
		"title":   {"The Wise Man's Fear"},
		"author":  {fx.Author.ID},
		"summary": {"Day two."},
		"isbn":    {"9780756407919"},
		"genre":   {fx.Spare.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, BooksURL, up.Location)

	d, err := svc.BookDetail(ctx, res.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Wise Man&#x27;s Fear", d.Book.Title)
	assert.Equal(t, fx.Author.ID, d.Author.ID)
	require.Len(t, d.Genres, 1)
	assert.Equal(t, "Poetry", d.Genres[0].Name)
	assert.Empty(t, d.Copies)
	assert.Equal(t, []string{"book.created", "book.updated"}, rec.events)
}

func TestCreateBook_MalformedReferencesFail(t *testing.T) {
	svc, fx, rec, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, url.Values{
		"title":   {"Broken"},
		"author":  {"nope"},
		"summary": {"s"},
		"isbn":    {"1"},
		"genre":   {"bad-genre", fx.Genre.ID},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = svc.CreateBook(ctx, url.Values{
		"title":   {"Broken"},
		"author":  {fx.Author.ID},
		"summary": {"s"},
		"isbn":    {"1"},
		"genre":   {"bad-genre"},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = svc.CreateBookInstance(ctx, url.Values{"book": {"garbage"}, "imprint": {"X"}})
	require.ErrorIs(t, err, apperr.ErrInvalidID)

	books, err := svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
	copies, err := svc.ListBookInstances(ctx)
	require.NoError(t, err)
	assert.Len(t, copies, 1)
	assert.Empty(t, rec.events)
}

func TestBookDetail_ResolvesEverything(t *testing.T) {
	svc, fx, _, _ := newService(t)

	d, err := svc.BookDetail(context.Background(), fx.Book.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.Author.FamilyName, d.Author.FamilyName)
	require.Len(t, d.Genres, 1)
	assert.Equal(t, fx.Genre.ID, d.Genres[0].ID)
	require.Len(t, d.Copies, 1)
	assert.Equal(t, fx.Copy.ID, d.Copies[0].ID)
}

func TestListBooks_JoinsAuthors(t *testing.T) {
	svc, fx, _, _ := newService(t)

	entries, err := svc.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fx.Author.ID, entries[0].Author.ID)
}

func TestCreateBookInstance_InvalidDateKeepsInput(t *testing.T) {
	svc, fx, _, _ := newService(t)

	res, err := svc.CreateBookInstance(context.Background(), url.Values{
		"book":     {fx.Book.ID},
		"imprint":  {"Penguin"},
		"status":   {"Loaned"},
		"due_back": {"not-a-date"},
	})
	require.NoError(t, err)
	require.Equal(t, pipeline.Redisplay, res.Action)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "due_back", res.Failures[0].Field)
	assert.Equal(t, fx.Book.ID, res.Entity.BookID)
	assert.Equal(t, "Penguin", res.Entity.Imprint)
	assert.Equal(t, models.StatusLoaned, res.Entity.Status)

	books, ok := res.Refs[RefBooks].([]models.Book)
	require.True(t, ok)
	assert.Len(t, books, 1)
}

func TestCreateBookInstance_DefaultsStatus(t *testing.T) {
	svc, fx, _, _ := newService(t)
	ctx := context.Background()

	res, err := svc.CreateBookInstance(ctx, url.Values{
		"book":     {fx.Book.ID},
		"imprint":  {"Penguin"},
		"due_back": {"2030-01-15"},
	})
	require.NoError(t, err)
	require.Equal(t, pipeline.Redirect, res.Action)

	d, err := svc.BookInstanceDetail(ctx, res.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusMaintenance, d.Copy.Status)
	assert.Equal(t, "Jan 15th, 2030", d.Copy.DueBackFormatted())
	assert.Equal(t, fx.Book.Title, d.Book.Title)
}

func TestCreateBookInstance_RejectsUnknownStatus(t *testing.T) {
	svc, fx, _, _ := newService(t)

	res, err := svc.CreateBookInstance(context.Background(), url.Values{
		"book":    {fx.Book.ID},
		"imprint": {"Penguin"},
		"status":  {"Lost"},
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Redisplay, res.Action)
}

func TestListBookInstances(t *testing.T) {
	svc, fx, _, _ := newService(t)

	entries, err := svc.ListBookInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fx.Book.Title, entries[0].Book.Title)
}

func TestForms(t *testing.T) {
	svc, fx, _, _ := newService(t)
	ctx := context.Background()

	bf, err := svc.EditBookForm(ctx, fx.Book.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.Book.ID, bf.Book.ID)
	assert.Len(t, bf.Genres, 2)

	cf, err := svc.NewBookInstanceForm(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatus, cf.Copy.Status)
	assert.Len(t, cf.Books, 1)

	_, err = svc.EditBookInstanceForm(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHome(t *testing.T) {
	svc, _, _, _ := newService(t)

	h, err := svc.Home(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Home{Books: 1, Copies: 1, CopiesAvailable: 1, Authors: 1, Genres: 2}, h)
}
