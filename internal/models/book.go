package models

import "time"

// Book is a title in the catalog. AuthorID and GenreIDs are references that
// the application, not the store, keeps consistent.
type Book struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	AuthorID string   `json:"author"`
	Summary  string   `json:"summary"`
	ISBN     string   `json:"isbn"`
	GenreIDs []string `json:"genre"`
}

// URL returns the book's detail location.
func (b Book) URL() string {
	return "/catalog/book/" + b.ID
}

// HasGenre reports whether the book is tagged with genreID.
func (b Book) HasGenre(genreID string) bool {
	for _, id := range b.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// Status is the circulation state of a physical copy.
type Status string

const (
	StatusAvailable   Status = "Available"
	StatusMaintenance Status = "Maintenance"
	StatusLoaned      Status = "Loaned"
	StatusReserved    Status = "Reserved"
)

// Statuses lists every Status in display order.
var Statuses = []Status{StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved}

// DefaultStatus is assigned to copies created without an explicit status.
const DefaultStatus = StatusMaintenance

// BookInstance is a physical copy of a Book.
type BookInstance struct {
	ID      string    `json:"id"`
	BookID  string    `json:"book"`
	Imprint string    `json:"imprint"`
	Status  Status    `json:"status"`
	DueBack time.Time `json:"due_back,omitzero"`
}

// URL returns the copy's detail location.
func (bi BookInstance) URL() string {
	return "/catalog/bookinstance/" + bi.ID
}

// DueBackFormatted renders the due date as "Jan 2nd, 2006", or "" when unset.
func (bi BookInstance) DueBackFormatted() string {
	if bi.DueBack.IsZero() {
		return ""
	}
	return shortDate(bi.DueBack)
}
