package web

import (
	"net/http"

	"github.com/starford/libris/internal/catalog"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
)

// ListBookInstances handles GET /catalog/bookinstances.
func (h *Handler) ListBookInstances(w http.ResponseWriter, r *http.Request) {
	copies, err := h.svc.ListBookInstances(r.Context())
	if err != nil {
		h.fail(w, r, catalog.EntityBookInstance, err)
		return
	}
	h.views.Render(w, http.StatusOK, "bookinstance_list", page{Title: "Book Instance List", Items: copies})
}

// BookInstanceDetail handles GET /catalog/bookinstance/{id}.
func (h *Handler) BookInstanceDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.BookInstanceDetail(r.Context(), entityID(r))
	if err != nil {
		h.fail(w, r, catalog.EntityBookInstance, err)
		return
	}
	h.views.Render(w, http.StatusOK, "bookinstance_detail", page{Title: "Book Instance Detail", Item: d})
}

func copyFormPage(title string, f catalog.CopyForm) page {
	return page{Title: title, Item: f.Copy, Books: f.Books, Statuses: models.Statuses}
}

func copyRedisplay(title string) func(pipeline.MutationResult[models.BookInstance]) page {
	return func(res pipeline.MutationResult[models.BookInstance]) page {
		return page{
			Title:    title,
			Item:     res.Entity,
			Books:    refs[models.Book](res.Refs, catalog.RefBooks),
			Statuses: models.Statuses,
		}
	}
}

// BookInstanceCreateForm handles GET /catalog/bookinstance/create.
func (h *Handler) BookInstanceCreateForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.NewBookInstanceForm(r.Context())
	if err != nil {
		h.fail(w, r, catalog.EntityBookInstance, err)
		return
	}
	h.views.Render(w, http.StatusOK, "bookinstance_form", copyFormPage("Create BookInstance", f))
}

// CreateBookInstance handles POST /catalog/bookinstance/create.
func (h *Handler) CreateBookInstance(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	res, err := h.svc.CreateBookInstance(r.Context(), r.PostForm)
	finishMutation(h, w, r, catalog.EntityBookInstance, "bookinstance_form", res, err, copyRedisplay("Create BookInstance"))
}

// BookInstanceUpdateForm handles GET /catalog/bookinstance/{id}/update.
func (h *Handler) BookInstanceUpdateForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.EditBookInstanceForm(r.Context(), entityID(r))
	if err != nil {
		h.fail(w, r, catalog.EntityBookInstance, err)
		return
	}
	h.views.Render(w, http.StatusOK, "bookinstance_form", copyFormPage("Update BookInstance", f))
}

// UpdateBookInstance handles POST /catalog/bookinstance/{id}/update.
func (h *Handler) UpdateBookInstance(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	res, err := h.svc.UpdateBookInstance(r.Context(), entityID(r), r.PostForm)
	finishMutation(h, w, r, catalog.EntityBookInstance, "bookinstance_form", res, err, copyRedisplay("Update BookInstance"))
}

// BookInstanceDeleteForm handles GET /catalog/bookinstance/{id}/delete.
func (h *Handler) BookInstanceDeleteForm(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.PreviewDeleteBookInstance(r.Context(), entityID(r))
	finishDeletion(h, w, r, catalog.EntityBookInstance, "Delete BookInstance", catalog.BookInstancesURL, res, err)
}

// DeleteBookInstance handles POST /catalog/bookinstance/{id}/delete.
func (h *Handler) DeleteBookInstance(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DeleteBookInstance(r.Context(), entityID(r))
	finishDeletion(h, w, r, catalog.EntityBookInstance, "Delete BookInstance", catalog.BookInstancesURL, res, err)
}
