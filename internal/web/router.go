package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/libris/internal/catalog"
)

// maxFormBytes caps urlencoded request bodies.
const maxFormBytes = 1 << 20

// NewRouter creates a chi router with every catalog route mounted.
// events, if non-nil, is mounted at GET /catalog/events.
func NewRouter(svc *catalog.Service, views *Renderer, events http.Handler) chi.Router {
	h := NewHandler(svc, views)

	r := chi.NewRouter()
	r.Use(middleware.RequestSize(maxFormBytes))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog", http.StatusFound)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.Home)

		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}

		r.Get("/genres", h.ListGenres)
		r.Get("/genre/create", h.GenreCreateForm)
		r.Post("/genre/create", h.CreateGenre)
		r.Get("/genre/{id}", h.GenreDetail)
		r.Get("/genre/{id}/update", h.GenreUpdateForm)
		r.Post("/genre/{id}/update", h.UpdateGenre)
		r.Get("/genre/{id}/delete", h.GenreDeleteForm)
		r.Post("/genre/{id}/delete", h.DeleteGenre)

		r.Get("/authors", h.ListAuthors)
		r.Get("/author/create", h.AuthorCreateForm)
		r.Post("/author/create", h.CreateAuthor)
		r.Get("/author/{id}", h.AuthorDetail)
		r.Get("/author/{id}/update", h.AuthorUpdateForm)
		r.Post("/author/{id}/update", h.UpdateAuthor)
		r.Get("/author/{id}/delete", h.AuthorDeleteForm)
		r.Post("/author/{id}/delete", h.DeleteAuthor)

		r.Get("/books", h.ListBooks)
		r.Get("/book/create", h.BookCreateForm)
		r.Post("/book/create", h.CreateBook)
		r.Get("/book/{id}", h.BookDetail)
		r.Get("/book/{id}/update", h.BookUpdateForm)
		r.Post("/book/{id}/update", h.UpdateBook)
		r.Get("/book/{id}/delete", h.BookDeleteForm)
		r.Post("/book/{id}/delete", h.DeleteBook)

		r.Get("/bookinstances", h.ListBookInstances)
		r.Get("/bookinstance/create", h.BookInstanceCreateForm)
		r.Post("/bookinstance/create", h.CreateBookInstance)
		r.Get("/bookinstance/{id}", h.BookInstanceDetail)
		r.Get("/bookinstance/{id}/update", h.BookInstanceUpdateForm)
		r.Post("/bookinstance/{id}/update", h.UpdateBookInstance)
		r.Get("/bookinstance/{id}/delete", h.BookInstanceDeleteForm)
		r.Post("/bookinstance/{id}/delete", h.DeleteBookInstance)
	})

	return r
}
