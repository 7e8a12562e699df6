package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"albumhub/internal/album"
	"albumhub/pkg/models"
)

// MemoryStore is a Store kept in memory. It orders and filters like
// album.Repo. Used for dry runs.
type MemoryStore struct {
	mu     sync.Mutex
	albums []models.Album // insertion order
	saves  int
}

// NewMemoryStore copies seed as the initial content. Seed entries without
// an id get one.
func NewMemoryStore(seed ...models.Album) *MemoryStore {
	s := &MemoryStore{}
	for _, a := range seed {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		a.Genres = append(models.GenreSet{}, a.Genres...)
		s.albums = append(s.albums, a)
	}
	return s
}

func (s *MemoryStore) Query(ctx context.Context, f album.Filter) ([]models.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Album, 0)
	for _, a := range s.albums {
		if matches(f, a) {
			a.Genres = append(models.GenreSet{}, a.Genres...)
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateString() < out[j].DateString()
	})

	if f.Limit > 0 {
		start := f.Offset
		if start < 0 {
			start = 0
		}
		if start > len(out) {
			start = len(out)
		}
		end := start + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, a models.Album) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a.Genres = append(models.GenreSet{}, a.Genres...)

	if a.ID == "" {
		a.ID = uuid.NewString()
		s.albums = append(s.albums, a)
		s.saves++
		return a.ID, nil
	}
	for i := range s.albums {
		if s.albums[i].ID == a.ID {
			s.albums[i] = a
			s.saves++
			return a.ID, nil
		}
	}
	return "", fmt.Errorf("update album %s: %w", a.ID, album.ErrNotFound)
}

// Saves counts successful writes.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// All returns a copy of the content in insertion order.
func (s *MemoryStore) All() []models.Album {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Album, len(s.albums))
	copy(out, s.albums)
	return out
}

func matches(f album.Filter, a models.Album) bool {
	if (f.Exact || f.Artist != "") && a.Artist != f.Artist {
		return false
	}
	if (f.Exact || f.Title != "") && a.Title != f.Title {
		return false
	}
	if g := strings.TrimSpace(f.Genre); g != "" && !a.Genres.Contains(strings.ToLower(g)) {
		return false
	}
	if f.From != nil && a.DateString() < f.From.Format(models.DateLayout) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(a.Artist), q) && !strings.Contains(strings.ToLower(a.Title), q) {
			return false
		}
	}
	return true
}
