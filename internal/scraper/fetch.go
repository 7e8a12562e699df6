package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrFetch wraps every failure to retrieve a page. Detail-page callers treat
// it as "no additional data"; only the listing page makes it fatal.
var ErrFetch = errors.New("fetch failed")

// maxPageSize caps a single page body. Larger pages are an error rather
// than a silently truncated document.
var maxPageSize = 10 << 20

// Fetcher retrieves HTML pages. It never retries.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch returns the page body. All errors wrap ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request %s: %v", ErrFetch, url, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: status %d", ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxPageSize)+1))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrFetch, url, err)
	}
	if len(body) > maxPageSize {
		return "", fmt.Errorf("%w: %s: page larger than %d bytes", ErrFetch, url, maxPageSize)
	}
	return string(body), nil
}

// Document fetches url and parses it.
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrFetch, url, err)
	}
	return doc, nil
}
