// Package reconcile merges normalized albums into the persisted store.
//
// Every incoming album is looked up by its identity. A titled album that is
// not stored yet may fill in an artist's "TBA" placeholder; anything else is
// inserted, or overwritten only when a field changed, so re-running the same
// input against the same store writes nothing.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"albumhub/internal/album"
	"albumhub/pkg/models"
)

// ErrIncomplete is returned for an album without an artist or a title.
// Such a record has no identity and is never written.
var ErrIncomplete = errors.New("album has no artist or title")

// Store is the persistence collaborator.
type Store interface {
	Query(ctx context.Context, f album.Filter) ([]models.Album, error)
	// Save inserts when the album has no id, updates otherwise, and
	// returns the id.
	Save(ctx context.Context, a models.Album) (string, error)
}

// Notifier is told about every write. It must not block.
type Notifier interface {
	AlbumChanged(ev Event)
}

type Action int

const (
	Unchanged Action = iota
	Insert
	UpdateExisting
	UpdatePlaceholder
)

func (a Action) String() string {
	switch a {
	case Insert:
		return "insert"
	case UpdateExisting:
		return "update"
	case UpdatePlaceholder:
		return "update_placeholder"
	default:
		return "unchanged"
	}
}

// Result describes what Reconcile did for one album.
type Result struct {
	Action  Action
	ID      string
	Changes []string // fields that differed, for updates
}

// Event is published after a write.
type Event struct {
	Type   string    `json:"type"` // "album.insert" or "album.update"
	Action string    `json:"action"`
	ID     string    `json:"id"`
	Artist string    `json:"artist"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

type Summary struct {
	Inserted            int
	Updated             int
	PlaceholdersUpdated int
	Unchanged           int
	Skipped             int // incomplete records
}

func (s Summary) Writes() int {
	return s.Inserted + s.Updated + s.PlaceholdersUpdated
}

type Engine struct {
	Store    Store
	Notifier Notifier
	Logger   *zap.Logger
}

func NewEngine(store Store, notifier Notifier, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Store: store, Notifier: notifier, Logger: logger}
}

// MergeAll reconciles albums one at a time in the given order. Incomplete
// albums are logged and skipped. A store error stops the run; whatever was
// written before it stays.
//
// A placeholder matched by one album of the run is not offered to later
// albums of the same run, so an artist with several TBA rows keeps one
// placeholder per row.
func (e *Engine) MergeAll(ctx context.Context, albums []models.Album) (Summary, error) {
	var sum Summary
	claimed := make(map[string]bool)
	for _, a := range albums {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := e.reconcile(ctx, a, claimed)
		if errors.Is(err, ErrIncomplete) {
			e.Logger.Warn("skipping incomplete album",
				zap.String("artist", a.Artist),
				zap.String("title", a.Title))
			sum.Skipped++
			continue
		}
		if err != nil {
			return sum, err
		}
		if res.ID != "" {
			claimed[res.ID] = true
		}
		switch res.Action {
		case Insert:
			sum.Inserted++
		case UpdateExisting:
			sum.Updated++
		case UpdatePlaceholder:
			sum.PlaceholdersUpdated++
		default:
			sum.Unchanged++
		}
	}
	return sum, nil
}

// Reconcile decides and applies the action for one incoming album.
func (e *Engine) Reconcile(ctx context.Context, in models.Album) (Result, error) {
	return e.reconcile(ctx, in, nil)
}

func (e *Engine) reconcile(ctx context.Context, in models.Album, claimed map[string]bool) (Result, error) {
	in.ID = ""
	if strings.TrimSpace(in.Artist) == "" || strings.TrimSpace(in.Title) == "" {
		return Result{}, fmt.Errorf("%w: %q - %q", ErrIncomplete, in.Artist, in.Title)
	}

	var (
		match *models.Album
		err   error
	)
	switch id := in.Identity().(type) {
	case models.Identified:
		match, err = e.firstMatch(ctx, id)
		if err != nil {
			return Result{}, err
		}
		if match == nil {
			ph, err := e.closestPlaceholder(ctx, id.Artist, in.ReleaseDate, claimed)
			if err != nil {
				return Result{}, err
			}
			if ph != nil {
				return e.write(ctx, *ph, in, UpdatePlaceholder, diff(*ph, in))
			}
		}
	case models.Placeholder:
		match, err = e.closestPlaceholder(ctx, id.Artist, in.ReleaseDate, claimed)
		if err != nil {
			return Result{}, err
		}
	}

	if match == nil {
		return e.write(ctx, models.Album{}, in, Insert, nil)
	}

	changes := diff(*match, in)
	if len(changes) == 0 {
		return Result{Action: Unchanged, ID: match.ID}, nil
	}
	return e.write(ctx, *match, in, UpdateExisting, changes)
}

func (e *Engine) firstMatch(ctx context.Context, id models.Identified) (*models.Album, error) {
	found, err := e.Store.Query(ctx, album.Filter{Artist: id.Artist, Title: id.Title, Exact: true})
	if err != nil {
		return nil, fmt.Errorf("query %s - %s: %w", id.Artist, id.Title, err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// closestPlaceholder picks the artist's unclaimed TBA record whose release
// date is nearest to date. The first one wins a tie.
func (e *Engine) closestPlaceholder(ctx context.Context, artist string, date time.Time, claimed map[string]bool) (*models.Album, error) {
	found, err := e.Store.Query(ctx, album.Filter{Artist: artist, Title: models.PlaceholderTitle, Exact: true})
	if err != nil {
		return nil, fmt.Errorf("query placeholders for %s: %w", artist, err)
	}

	var (
		best     *models.Album
		bestDist time.Duration
	)
	for i := range found {
		if claimed[found[i].ID] {
			continue
		}
		d := absDuration(found[i].ReleaseDate.Sub(date))
		if best == nil || d < bestDist {
			best = &found[i]
			bestDist = d
		}
	}
	return best, nil
}

// write stores in under target's id (empty for an insert).
func (e *Engine) write(ctx context.Context, target, in models.Album, action Action, changes []string) (Result, error) {
	in.ID = target.ID
	id, err := e.Store.Save(ctx, in)
	if err != nil {
		return Result{}, fmt.Errorf("%s %s - %s: %w", action, in.Artist, in.Title, err)
	}

	e.Logger.Info("album merged",
		zap.String("action", action.String()),
		zap.String("id", id),
		zap.String("artist", in.Artist),
		zap.String("title", in.Title),
		zap.Strings("changes", changes))

	if e.Notifier != nil {
		evType := "album.update"
		if action == Insert {
			evType = "album.insert"
		}
		e.Notifier.AlbumChanged(Event{
			Type:   evType,
			Action: action.String(),
			ID:     id,
			Artist: in.Artist,
			Title:  in.Title,
			At:     time.Now().UTC(),
		})
	}

	return Result{Action: action, ID: id, Changes: changes}, nil
}

// diff lists the fields of stored that in would change.
func diff(stored, in models.Album) []string {
	var changes []string
	if stored.Artist != in.Artist {
		changes = append(changes, "artist")
	}
	if stored.Title != in.Title {
		changes = append(changes, "title")
	}
	if stored.DateString() != in.DateString() {
		changes = append(changes, "releaseDate")
	}
	if stored.CoverURL != in.CoverURL {
		changes = append(changes, "coverURL")
	}
	if !stored.Genres.Equal(in.Genres) {
		changes = append(changes, "genres")
	}
	return changes
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
