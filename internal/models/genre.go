package models

// Genre classifies books; a book may carry several genres.
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// URL returns the genre's detail location.
func (g Genre) URL() string {
	return "/catalog/genre/" + g.ID
}
