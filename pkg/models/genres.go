package models

import "strings"

// GenreSet is a lower-cased, de-duplicated list of genres. Insertion order is
// kept for display but ignored by Equal.
type GenreSet []string

// NewGenreSet builds a set from raw tokens.
func NewGenreSet(tokens ...string) GenreSet {
	s := GenreSet{}
	return s.Add(tokens...)
}

// Add appends the normalized tokens that are not already present.
// Empty tokens are dropped.
func (s GenreSet) Add(tokens ...string) GenreSet {
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || s.Contains(t) {
			continue
		}
		s = append(s, t)
	}
	return s
}

func (s GenreSet) Contains(genre string) bool {
	for _, g := range s {
		if g == genre {
			return true
		}
	}
	return false
}

// Equal reports set equality.
func (s GenreSet) Equal(other GenreSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, g := range s {
		if !other.Contains(g) {
			return false
		}
	}
	return true
}
