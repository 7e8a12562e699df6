package models

import (
	"strings"
	"time"
)

// PlaceholderTitle is the title Wikipedia uses for announced releases
// whose name is not known yet.
const PlaceholderTitle = "TBA"

// DateLayout is the canonical string form of a release date.
const DateLayout = "2006-01-02"

// Album is the normalized, internal form of an album entry used by the
// scraper, the reconciliation engine and the read API.
//
// ID is assigned by the store on insert and is empty for records that
// were never persisted.
type Album struct {
	ID          string    `json:"id"`
	Artist      string    `json:"artist"`
	Title       string    `json:"title"`
	Genres      GenreSet  `json:"genres"`
	ReleaseDate time.Time `json:"releaseDate"`
	CoverURL    string    `json:"coverURL"`
}

// DateString returns the release date in DateLayout.
func (a Album) DateString() string {
	return a.ReleaseDate.Format(DateLayout)
}

// IsPlaceholder reports whether the album stands in for an untitled release.
func (a Album) IsPlaceholder() bool {
	return a.Title == PlaceholderTitle
}

// Identity returns the lookup identity of the album: Identified when the
// title is known, Placeholder otherwise.
func (a Album) Identity() Identity {
	if a.IsPlaceholder() {
		return Placeholder{Artist: a.Artist}
	}
	return Identified{Artist: a.Artist, Title: a.Title}
}

// Identity is either Identified or Placeholder.
type Identity interface {
	identity()
}

// Identified is the natural (artist, title) key of a titled album.
type Identified struct {
	Artist string
	Title  string
}

// Placeholder is an artist's announced release with no title yet.
type Placeholder struct {
	Artist string
}

func (Identified) identity()  {}
func (Placeholder) identity() {}

// ParseDate parses DateLayout or RFC3339 and truncates to a UTC day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// MonthEnd returns the last calendar day of t's month at UTC midnight.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}
