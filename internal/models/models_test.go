package models

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAuthorName(t *testing.T) {
	cases := []struct {
		a    Author
		want string
	}{
		{Author{FirstName: "Isaac", FamilyName: "Asimov"}, "Asimov, Isaac"},
		{Author{FamilyName: "Asimov"}, "Asimov"},
		{Author{FirstName: "Isaac"}, "Isaac"},
		{Author{}, ""},
	}
	for _, c := range cases {
		if got := c.a.Name(); got != c.want {
			t.Errorf("Name(%+v) = %q, want %q", c.a, got, c.want)
		}
	}
}

func TestAuthorLifespan(t *testing.T) {
	a := Author{DateOfBirth: day(1920, time.January, 2), DateOfDeath: day(1992, time.April, 6)}
	if got := a.Lifespan(); got != "January 2nd, 1920 - April 6th, 1992" {
		t.Errorf("Lifespan() = %q", got)
	}

	a.DateOfDeath = time.Time{}
	if got := a.Lifespan(); got != "" {
		t.Errorf("Lifespan() with one date = %q, want empty", got)
	}
}

func TestURLs(t *testing.T) {
	if got := (Author{ID: "a1"}).URL(); got != "/catalog/author/a1" {
		t.Errorf("author URL = %q", got)
	}
	if got := (Genre{ID: "g1"}).URL(); got != "/catalog/genre/g1" {
		t.Errorf("genre URL = %q", got)
	}
	if got := (Book{ID: "b1"}).URL(); got != "/catalog/book/b1" {
		t.Errorf("book URL = %q", got)
	}
	if got := (BookInstance{ID: "c1"}).URL(); got != "/catalog/bookinstance/c1" {
		t.Errorf("copy URL = %q", got)
	}
}

func TestDueBackFormatted(t *testing.T) {
	bi := BookInstance{DueBack: day(2030, time.March, 23)}
	if got := bi.DueBackFormatted(); got != "Mar 23rd, 2030" {
		t.Errorf("DueBackFormatted() = %q", got)
	}
	if got := (BookInstance{}).DueBackFormatted(); got != "" {
		t.Errorf("unset due date = %q", got)
	}
}

func TestHasGenre(t *testing.T) {
	b := Book{GenreIDs: []string{"g1", "g2"}}
	if !b.HasGenre("g2") || b.HasGenre("g3") {
		t.Error("HasGenre mismatch")
	}
}
