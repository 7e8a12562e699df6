package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"albumhub/internal/album"
	"albumhub/internal/pipeline"
	"albumhub/internal/reconcile"
	"albumhub/pkg/database"
	"albumhub/pkg/utils"
)

func main() {
	utils.LoadEnv()
	scrapeCfg := utils.LoadScrapeConfig()

	var (
		wiki    = flag.Bool("wiki", false, "scrape the Wikipedia release list")
		wikiURL = flag.String("url", scrapeCfg.WikiURL, "listing page to scrape")
		local   = flag.String("local", "", "merge albums from a .json or .csv file")
		dryRun  = flag.Bool("dry-run", false, "log merge decisions without writing")
		timeout = flag.Duration("timeout", 30*time.Minute, "overall run timeout")
	)
	flag.Parse()

	// no flags means a plain wiki scrape
	if !*wiki && *local == "" {
		*wiki = true
	}
	scrapeCfg.WikiURL = *wikiURL

	logger, err := utils.NewLogger(utils.LogLevel())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := run(ctx, logger, pipeline.Options{Wiki: *wiki, LocalPath: *local, Scrape: scrapeCfg}, *dryRun); err != nil {
		logger.Error("scrape failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, opts pipeline.Options, dryRun bool) error {
	cfg := database.DefaultConfig()
	db, err := database.OpenAndMigrate(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := album.NewRepo(db)
	var store reconcile.Store = repo
	if dryRun {
		overlay, err := pipeline.Overlay(ctx, repo)
		if err != nil {
			return err
		}
		store = overlay
		logger.Info("dry run, database is left untouched")
	}

	sum, err := pipeline.Run(ctx, pipeline.Sources(opts, logger), store, nil, logger)
	if err != nil {
		return err
	}
	logger.Info("scrape finished",
		zap.String("db", cfg.Path),
		zap.Bool("dry_run", dryRun),
		zap.Int("writes", sum.Writes()))
	return nil
}
