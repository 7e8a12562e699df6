// Package pipeline wires the scrape sources to the merge engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"albumhub/internal/album"
	"albumhub/internal/reconcile"
	"albumhub/internal/scraper"
	"albumhub/pkg/utils"
)

// ErrNoSources is returned when neither the wiki nor a local file is selected.
var ErrNoSources = errors.New("no sources selected")

type Options struct {
	Wiki      bool
	LocalPath string
	Scrape    utils.ScrapeConfig
}

// Sources builds the sources in merge order: wiki first, then the local file.
func Sources(opts Options, logger *zap.Logger) []scraper.Source {
	var sources []scraper.Source
	if opts.Wiki {
		fetcher := scraper.NewFetcher(opts.Scrape.HTTPTimeout, opts.Scrape.UserAgent)
		sources = append(sources, scraper.NewWikiSource(opts.Scrape.WikiURL, fetcher, opts.Scrape.DefaultCoverURL, logger))
	}
	if opts.LocalPath != "" {
		sources = append(sources, scraper.NewFileSource(opts.LocalPath))
	}
	return sources
}

// Run fetches every source and merges the result into store.
func Run(ctx context.Context, sources []scraper.Source, store reconcile.Store, notifier reconcile.Notifier, logger *zap.Logger) (reconcile.Summary, error) {
	if len(sources) == 0 {
		return reconcile.Summary{}, ErrNoSources
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	albums, err := scraper.NewAggregator(logger, sources...).FetchAndMerge(ctx)
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("scrape: %w", err)
	}
	logger.Info("scraped albums", zap.Int("albums", len(albums)))

	sum, err := reconcile.NewEngine(store, notifier, logger).MergeAll(ctx, albums)
	if err != nil {
		return sum, fmt.Errorf("merge: %w", err)
	}
	logger.Info("merge done",
		zap.Int("inserted", sum.Inserted),
		zap.Int("updated", sum.Updated),
		zap.Int("placeholders_updated", sum.PlaceholdersUpdated),
		zap.Int("unchanged", sum.Unchanged),
		zap.Int("skipped", sum.Skipped))
	return sum, nil
}

// Overlay copies everything in repo into a MemoryStore so a run can be
// previewed without touching the database.
func Overlay(ctx context.Context, repo *album.Repo) (*reconcile.MemoryStore, error) {
	stored, err := repo.Query(ctx, album.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load albums: %w", err)
	}
	return reconcile.NewMemoryStore(stored...), nil
}
