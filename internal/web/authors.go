package web

import (
	"net/http"

	"github.com/starford/libris/internal/catalog"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
)

// ListAuthors handles GET /catalog/authors.
func (h *Handler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.svc.ListAuthors(r.Context())
	if err != nil {
		h.fail(w, r, catalog.EntityAuthor, err)
		return
	}
	h.views.Render(w, http.StatusOK, "author_list", page{Title: "Author List", Items: authors})
}

// AuthorDetail handles GET /catalog/author/{id}.
func (h *Handler) AuthorDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.AuthorDetail(r.Context(), entityID(r))
	if err != nil {
		h.fail(w, r, catalog.EntityAuthor, err)
		return
	}
	h.views.Render(w, http.StatusOK, "author_detail", page{Title: "Author Detail", Item: d})
}

// AuthorCreateForm handles GET /catalog/author/create.
func (h *Handler) AuthorCreateForm(w http.ResponseWriter, _ *http.Request) {
	h.views.Render(w, http.StatusOK, "author_form", page{Title: "Create Author", Item: models.Author{}})
}

// CreateAuthor handles POST /catalog/author/create.
func (h *Handler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	res, err := h.svc.CreateAuthor(r.Context(), r.PostForm)
	finishMutation(h, w, r, catalog.EntityAuthor, "author_form", res, err, func(res pipeline.MutationResult[models.Author]) page {
		return page{Title: "Create Author", Item: res.Entity}
	})
}

// AuthorUpdateForm handles GET /catalog/author/{id}/update.
func (h *Handler) AuthorUpdateForm(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Author(r.Context(), entityID(r))
	if err != nil {
		h.fail(w, r, catalog.EntityAuthor, err)
		return
	}
	h.views.Render(w, http.StatusOK, "author_form", page{Title: "Update Author", Item: a})
}

// UpdateAuthor handles POST /catalog/author/{id}/update.
func (h *Handler) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	res, err := h.svc.UpdateAuthor(r.Context(), entityID(r), r.PostForm)
	finishMutation(h, w, r, catalog.EntityAuthor, "author_form", res, err, func(res pipeline.MutationResult[models.Author]) page {
		return page{Title: "Update Author", Item: res.Entity}
	})
}

// AuthorDeleteForm handles GET /catalog/author/{id}/delete.
func (h *Handler) AuthorDeleteForm(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.PreviewDeleteAuthor(r.Context(), entityID(r))
	finishDeletion(h, w, r, catalog.EntityAuthor, "Delete Author", catalog.AuthorsURL, res, err)
}

// DeleteAuthor handles POST /catalog/author/{id}/delete.
func (h *Handler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DeleteAuthor(r.Context(), entityID(r))
	finishDeletion(h, w, r, catalog.EntityAuthor, "Delete Author", catalog.AuthorsURL, res, err)
}
