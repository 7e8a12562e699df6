package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"albumhub/internal/scraper"
	"albumhub/pkg/utils"
)

// export-mirror saves the listing page and every album and artist page it
// links to, so mirror-server can replay a scrape offline.
func main() {
	utils.LoadEnv()
	cfg := utils.LoadScrapeConfig()

	var (
		outDir  = flag.String("out", "data/mirror", "snapshot directory")
		wikiURL = flag.String("url", cfg.WikiURL, "listing page to capture")
	)
	flag.Parse()

	logger, err := utils.NewLogger(utils.LogLevel())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("mkdir failed", zap.Error(err))
	}

	mirror := &scraper.Mirror{
		Dir:   *outDir,
		Pages: scraper.NewFetcher(cfg.HTTPTimeout, cfg.UserAgent),
	}
	src := scraper.NewWikiSource(*wikiURL, mirror, cfg.DefaultCoverURL, logger)

	albums, err := src.FetchAll(ctx)
	if err != nil {
		logger.Fatal("capture failed", zap.Error(err))
	}

	logger.Info("snapshot written",
		zap.String("dir", filepath.Clean(*outDir)),
		zap.Int("pages", mirror.Saved()),
		zap.Int("albums", len(albums)))
}
