package web

import (
	"net/http"

	"github.com/starford/libris/internal/catalog"
	"github.com/starford/libris/internal/models"
	"github.com/starford/libris/internal/pipeline"
)

// ListBooks handles GET /catalog/books.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		h.fail(w, r, catalog.EntityBook, err)
		return
	}
	h.views.Render(w, http.StatusOK, "book_list", page{Title: "Book List", Items: books})
}

// BookDetail handles GET /catalog/book/{id}.
func (h *Handler) BookDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.BookDetail(r.Context(), entityID(r))
	if err != nil {
		h.fail(w, r, catalog.EntityBook, err)
		return
	}
	h.views.Render(w, http.StatusOK, "book_detail", page{Title: "Book Detail", Item: d})
}

func bookFormPage(title string, f catalog.BookForm) page {
	return page{Title: title, Item: f.Book, Authors: f.Authors, Genres: f.Genres}
}

func bookRedisplay(title string) func(pipeline.MutationResult[models.Book]) page {
	return func(res pipeline.MutationResult[models.Book]) page {
		return page{
			Title:   title,
			Item:    res.Entity,
			Authors: refs[models.Author](res.Refs, catalog.RefAuthors),
			Genres:  refs[models.Genre](res.Refs, catalog.RefGenres),
		}
	}
}

// BookCreateForm handles GET /catalog/book/create.
func (h *Handler) BookCreateForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.NewBookForm(r.Context())
	if err != nil {
		h.fail(w, r, catalog.EntityBook, err)
		return
	}
	h.views.Render(w, http.StatusOK, "book_form", bookFormPage("Create Book", f))
}

// CreateBook handles POST /catalog/book/create.
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	res, err := h.svc.CreateBook(r.Context(), r.PostForm)
	finishMutation(h, w, r, catalog.EntityBook, "book_form", res, err, bookRedisplay("Create Book"))
}

// BookUpdateForm handles GET /catalog/book/{id}/update.
func (h *Handler) BookUpdateForm(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.EditBookForm(r.Context(), entityID(r))
	if err != nil {
		h.fail(w, r, catalog.EntityBook, err)
		return
	}
	h.views.Render(w, http.StatusOK, "book_form", bookFormPage("Update Book", f))
}

// UpdateBook handles POST /catalog/book/{id}/update.
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	res, err := h.svc.UpdateBook(r.Context(), entityID(r), r.PostForm)
	finishMutation(h, w, r, catalog.EntityBook, "book_form", res, err, bookRedisplay("Update Book"))
}

// BookDeleteForm handles GET /catalog/book/{id}/delete.
func (h *Handler) BookDeleteForm(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.PreviewDeleteBook(r.Context(), entityID(r))
	finishDeletion(h, w, r, catalog.EntityBook, "Delete Book", catalog.BooksURL, res, err)
}

// DeleteBook handles POST /catalog/book/{id}/delete.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DeleteBook(r.Context(), entityID(r))
	finishDeletion(h, w, r, catalog.EntityBook, "Delete Book", catalog.BooksURL, res, err)
}
