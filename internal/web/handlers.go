// Package web serves the catalog as server-rendered HTML using chi.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/libris/internal/aggregate"
	"github.com/starford/libris/internal/apperr"
	"github.com/starford/libris/internal/catalog"
	"github.com/starford/libris/internal/form"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
)

// page is the data handed to every template.
type page struct {
	Title   string
	Message string
	Errors  []form.Failure

	// Item is the entity or detail view being shown.
	Item any
	// Items is a list view or the dependents blocking a deletion.
	Items any
	// Blocked is set on delete pages that list dependents.
	Blocked bool

	Authors  []models.Author
	Genres   []models.Genre
	Books    []models.Book
	Statuses []models.Status
}

// Handler holds the HTML route handlers.
type Handler struct {
	svc   *catalog.Service
	views *Renderer
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service, views *Renderer) *Handler {
	return &Handler{svc: svc, views: views}
}

func entityID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// fail renders the 404 page for apperr.ErrNotFound and the 500 page for
// anything else.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, entity string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		h.views.Render(w, http.StatusNotFound, "error", page{
			Title:   "Not found",
			Message: entity + " not found",
		})
		return
	}
	slog.Error("catalog request failed",
		slog.String("entity", entity),
		slog.String("id", entityID(r)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	h.views.Render(w, http.StatusInternalServerError, "error", page{
		Title:   "Error",
		Message: "Something went wrong.",
	})
}

// parseForm reads the urlencoded body. A malformed or oversized body is a
// client error.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		h.views.Render(w, http.StatusBadRequest, "error", page{
			Title:   "Bad request",
			Message: "The submitted form could not be read.",
		})
		return false
	}
	return true
}

// finishMutation redirects after a save or re-renders formPage after a
// validation failure.
func finishMutation[T any](h *Handler, w http.ResponseWriter, r *http.Request, entity, formPage string,
	res pipeline.MutationResult[T], err error, redisplay func(pipeline.MutationResult[T]) page,
) {
	if err != nil {
		h.fail(w, r, entity, err)
		return
	}
	if res.Action == pipeline.Redisplay {
		p := redisplay(res)
		p.Errors = res.Failures
		h.views.Render(w, http.StatusOK, formPage, p)
		return
	}
	http.Redirect(w, r, res.Location, http.StatusSeeOther)
}

// finishDeletion renders the confirmation or blocked page, or redirects to
// collection once the target is deleted or was already gone.
func finishDeletion[T, D any](h *Handler, w http.ResponseWriter, r *http.Request, entity, title, collection string,
	res pipeline.DeletionResult[T, D], err error,
) {
	if err != nil {
		h.fail(w, r, entity, err)
		return
	}
	switch res.State {
	case pipeline.Gone, pipeline.Deleted:
		http.Redirect(w, r, collection, http.StatusSeeOther)
	default:
		h.views.Render(w, http.StatusOK, entity+"_delete", page{
			Title:   title,
			Item:    res.Target,
			Items:   res.Dependents,
			Blocked: res.State == pipeline.Blocked,
		})
	}
}

// refs returns the reference list stored under key, or nil when the
// mutation carried none.
func refs[T any](r aggregate.Results, key string) []T {
	if _, ok := r[key]; !ok {
		return nil
	}
	return aggregate.Get[[]T](r, key)
}

// Home handles GET /catalog.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Home(r.Context())
	if err != nil {
		h.fail(w, r, "catalog", err)
		return
	}
	h.views.Render(w, http.StatusOK, "home", page{Title: "Local Library Home", Item: counts})
}
