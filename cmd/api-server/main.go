package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"albumhub/internal/album"
	"albumhub/internal/feed"
	"albumhub/internal/pipeline"
	"albumhub/pkg/database"
	"albumhub/pkg/utils"
)

func main() {
	utils.LoadEnv()
	srvCfg := utils.LoadServerConfig()
	scrapeCfg := utils.LoadScrapeConfig()

	logger, err := utils.NewLogger(utils.LogLevel())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := database.DefaultConfig()
	db, err := database.OpenAndMigrate(cfg)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close()

	hub := feed.NewHub()
	repo := album.NewRepo(db)
	router := newRouter(db, cfg.Path, repo, hub, srvCfg.PageSize, logger)

	httpSrv := &http.Server{
		Addr:              srvCfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var tcpSrv *feed.Server
	if srvCfg.TCPAddr != "" {
		tcpSrv = feed.NewServer(srvCfg.TCPAddr, hub, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	if tcpSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("http api listening", zap.String("addr", srvCfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if srvCfg.ScrapeInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scrapeLoop(ctx, srvCfg.ScrapeInterval, scrapeCfg, repo, hub, logger)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down servers")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", zap.Error(err))
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logger.Warn("tcp shutdown error", zap.Error(err))
		}
	}

	wg.Wait()
	logger.Info("servers stopped")
}

func newRouter(db *sql.DB, dbPath string, repo *album.Repo, hub *feed.Hub, pageSize int, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/ws", feed.WSHandler(hub, logger))

	h := album.NewHandler(repo, pageSize, logger)
	h.RegisterRoutes(router.Group("/albums"))
	h.RegisterRoutes(router.Group("/api/albums"))
	h.RegisterGenreRoutes(router.Group("/genres"))

	return router
}

// scrapeLoop runs a scrape right away and then once per interval. Changes
// are broadcast to feed subscribers. A failed run is logged and retried on
// the next tick.
func scrapeLoop(ctx context.Context, interval time.Duration, cfg utils.ScrapeConfig, repo *album.Repo, hub *feed.Hub, logger *zap.Logger) {
	sources := pipeline.Sources(pipeline.Options{Wiki: true, Scrape: cfg}, logger)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := pipeline.Run(ctx, sources, repo, hub, logger); err != nil && ctx.Err() == nil {
			logger.Error("scheduled scrape failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
