package scraper

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// BodyFetcher returns a raw page body. *Fetcher implements it.
type BodyFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Mirror is a PageFetcher that writes every page it fetches under Dir, laid
// out by URL path, so the snapshot can be served back with MirrorFile.
type Mirror struct {
	Dir   string
	Pages BodyFetcher

	mu    sync.Mutex
	saved int
}

func (m *Mirror) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := m.Pages.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
	}
	file := MirrorFile(m.Dir, u.EscapedPath())
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.saved++
	m.mu.Unlock()

	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

// Saved is the number of pages written so far.
func (m *Mirror) Saved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}

// MirrorFile maps an escaped URL path to its snapshot file. The path is
// cleaned as a rooted path, so it can never leave dir.
func MirrorFile(dir, escapedPath string) string {
	p := path.Clean("/" + escapedPath)
	if p == "/" {
		p = "/index"
	}
	return filepath.Join(dir, filepath.FromSlash(p)) + ".html"
}
