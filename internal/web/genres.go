package web

import (
	"net/http"

	"github.com/starford/libris/internal/catalog"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
)

// ListGenres handles GET /catalog/genres.
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.svc.ListGenres(r.Context())
	if err != nil {
		h.fail(w, r, catalog.EntityGenre, err)
		return
	}
	h.views.Render(w, http.StatusOK, "genre_list", page{Title: "Genre List", Items: genres})
}

// GenreDetail handles GET /catalog/genre/{id}.
func (h *Handler) GenreDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GenreDetail(r.Context(), entityID(r))
	if err != nil {
		h.fail(w, r, catalog.EntityGenre, err)
		return
	}
	h.views.Render(w, http.StatusOK, "genre_detail", page{Title: "Genre Detail", Item: d})
}

// GenreCreateForm handles GET /catalog/genre/create.
func (h *Handler) GenreCreateForm(w http.ResponseWriter, _ *http.Request) {
	h.views.Render(w, http.StatusOK, "genre_form", page{Title: "Create Genre", Item: models.Genre{}})
}

// CreateGenre handles POST /catalog/genre/create.
func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	res, err := h.svc.CreateGenre(r.Context(), r.PostForm)
	finishMutation(h, w, r, catalog.EntityGenre, "genre_form", res, err, func(res pipeline.MutationResult[models.Genre]) page {
		return page{Title: "Create Genre", Item: res.Entity}
	})
}

// GenreUpdateForm handles GET /catalog/genre/{id}/update.
func (h *Handler) GenreUpdateForm(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Genre(r.Context(), entityID(r))
	if err != nil {
		h.fail(w, r, catalog.EntityGenre, err)
		return
	}
	h.views.Render(w, http.StatusOK, "genre_form", page{Title: "Update Genre", Item: g})
}

// UpdateGenre handles POST /catalog/genre/{id}/update.
func (h *Handler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	res, err := h.svc.UpdateGenre(r.Context(), entityID(r), r.PostForm)
	finishMutation(h, w, r, catalog.EntityGenre, "genre_form", res, err, func(res pipeline.MutationResult[models.Genre]) page {
		return page{Title: "Update Genre", Item: res.Entity}
	})
}

// GenreDeleteForm handles GET /catalog/genre/{id}/delete.
func (h *Handler) GenreDeleteForm(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.PreviewDeleteGenre(r.Context(), entityID(r))
	finishDeletion(h, w, r, catalog.EntityGenre, "Delete Genre", catalog.GenresURL, res, err)
}

// DeleteGenre handles POST /catalog/genre/{id}/delete.
func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DeleteGenre(r.Context(), entityID(r))
	finishDeletion(h, w, r, catalog.EntityGenre, "Delete Genre", catalog.GenresURL, res, err)
}
