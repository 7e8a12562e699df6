package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultWikiURL  = "https://en.wikipedia.org/wiki/List_of_2021_albums"
	DefaultCoverURL = "/img/default-cover.svg"
)

type ScrapeConfig struct {
	WikiURL         string
	UserAgent       string
	HTTPTimeout     time.Duration
	DefaultCoverURL string
}

type ServerConfig struct {
	HTTPAddr       string
	TCPAddr        string
	PageSize       int
	ScrapeInterval time.Duration // 0 disables the background scrape
}

// LoadEnv reads .env from the working directory when it exists. Variables
// already set in the process environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

func LoadScrapeConfig() ScrapeConfig {
	return ScrapeConfig{
		WikiURL:         getenv("ALBUMS_WIKI_URL", DefaultWikiURL),
		UserAgent:       getenv("ALBUMS_USER_AGENT", "albumhub/1.0 (release schedule scraper)"),
		HTTPTimeout:     getDuration("ALBUMS_HTTP_TIMEOUT", 15*time.Second),
		DefaultCoverURL: getenv("ALBUMS_DEFAULT_COVER", DefaultCoverURL),
	}
}

func LoadServerConfig() ServerConfig {
	pageSize := getInt("ALBUMS_PAGE_SIZE", 30)
	if pageSize <= 0 {
		pageSize = 30
	}
	return ServerConfig{
		HTTPAddr:       getenv("ALBUMS_HTTP_ADDR", ":8080"),
		TCPAddr:        getenv("ALBUMS_TCP_ADDR", ""),
		PageSize:       pageSize,
		ScrapeInterval: getDuration("ALBUMS_SCRAPE_INTERVAL", 0),
	}
}

func LogLevel() string {
	return getenv("ALBUMS_LOG_LEVEL", "info")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getInt falls back to def when the value does not parse.
func getInt(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return n
}

// getDuration accepts Go durations ("90s", "6h") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
