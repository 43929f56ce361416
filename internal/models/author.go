// Package models defines the catalog's entity value types. Derived fields
// (display names, lifespans, canonical URLs) are computed on read and never
// stored.
package models

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Author is a person credited with one or more books.
type Author struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	FamilyName  string    `json:"family_name"`
	DateOfBirth time.Time `json:"date_of_birth,omitzero"`
	DateOfDeath time.Time `json:"date_of_death,omitzero"`
}

// Name returns "family_name, first_name".
func (a Author) Name() string {
	switch {
	case a.FamilyName != "" && a.FirstName != "":
		return a.FamilyName + ", " + a.FirstName
	case a.FamilyName != "":
		return a.FamilyName
	default:
		return a.FirstName
	}
}

// Lifespan returns the span between birth and death, or "" unless both are known.
func (a Author) Lifespan() string {
	if a.DateOfBirth.IsZero() || a.DateOfDeath.IsZero() {
		return ""
	}
	return longDate(a.DateOfBirth) + " - " + longDate(a.DateOfDeath)
}

// URL returns the author's detail location.
func (a Author) URL() string {
	return "/catalog/author/" + a.ID
}

// longDate renders t as "January 2nd, 2006".
func longDate(t time.Time) string {
	return fmt.Sprintf("%s %s, %d", t.Month(), humanize.Ordinal(t.Day()), t.Year())
}

// shortDate renders t as "Jan 2nd, 2006".
func shortDate(t time.Time) string {
	return fmt.Sprintf("%s %s, %d", t.Format("Jan"), humanize.Ordinal(t.Day()), t.Year())
}
