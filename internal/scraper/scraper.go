package scraper

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"albumhub/pkg/models"
)

// Source is implemented by each album data source (Wikipedia, local file).
// Each source is responsible for fetching its own data format and mapping it
// into models.Album, in source order.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.Album, error)
}

// Aggregator runs sources in order and folds their records into one list.
type Aggregator struct {
	Sources []Source
	Logger  *zap.Logger
}

// NewAggregator creates a new Aggregator with the given sources.
func NewAggregator(logger *zap.Logger, sources ...Source) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{Sources: sources, Logger: logger}
}

// FetchAndMerge fetches every source and returns the records in source
// order. A record whose identity was already seen is merged into the
// earlier one. A failing source is skipped; the call fails only when every
// source failed.
func (a *Aggregator) FetchAndMerge(ctx context.Context) ([]models.Album, error) {
	var (
		out    []models.Album
		index  = make(map[string]int)
		errs   []error
		failed int
	)

	for _, src := range a.Sources {
		a.Logger.Info("fetching source", zap.String("source", src.Name()))
		albums, err := src.FetchAll(ctx)
		if err != nil {
			a.Logger.Error("source failed", zap.String("source", src.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			failed++
			continue
		}

		for _, al := range albums {
			key := canonicalKey(al)
			if key == "" {
				out = append(out, al)
				continue
			}
			if i, ok := index[key]; ok {
				out[i] = mergeAlbum(out[i], al)
				continue
			}
			index[key] = len(out)
			out = append(out, al)
		}
		a.Logger.Info("source done", zap.String("source", src.Name()), zap.Int("albums", len(albums)))
	}

	if len(a.Sources) > 0 && failed == len(a.Sources) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// canonicalKey groups rows that describe the same album. It is exact, like
// the store's (artist, title) identity, so rows the store would keep apart
// are never folded. Placeholders get no key and are never folded together
// since one artist can announce several.
func canonicalKey(al models.Album) string {
	if id, ok := al.Identity().(models.Identified); ok {
		return id.Artist + "\x00" + id.Title
	}
	return ""
}

// mergeAlbum resolves two rows for the same album:
//
// - Genres: set union.
// - Cover: keep base unless it is empty.
// - Date and names: keep base (first seen wins).
func mergeAlbum(base, incoming models.Album) models.Album {
	base.Genres = base.Genres.Add(incoming.Genres...)
	if base.CoverURL == "" && incoming.CoverURL != "" {
		base.CoverURL = incoming.CoverURL
	}
	return base
}
