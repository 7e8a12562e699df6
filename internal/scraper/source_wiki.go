package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"albumhub/pkg/models"
)

var listingYearRe = regexp.MustCompile(`\b(\d{4})\b`)

// WikiSource scrapes a Wikipedia "List of <year> albums" page.
type WikiSource struct {
	ListingURL      string
	Pages           PageFetcher
	DefaultCoverURL string
	Now             func() time.Time
	Logger          *zap.Logger
}

func NewWikiSource(listingURL string, pages PageFetcher, defaultCover string, logger *zap.Logger) *WikiSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WikiSource{
		ListingURL:      listingURL,
		Pages:           pages,
		DefaultCoverURL: defaultCover,
		Now:             time.Now,
		Logger:          logger,
	}
}

func (s *WikiSource) Name() string { return "wikipedia" }

// FetchAll scrapes every release table on the listing page, table by table
// and row by row. Failing to fetch the listing page itself is the only
// fatal error.
func (s *WikiSource) FetchAll(ctx context.Context) ([]models.Album, error) {
	base, err := url.Parse(s.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("wiki: listing url: %w", err)
	}

	doc, err := s.Pages.Document(ctx, s.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("wiki: listing page: %w", err)
	}

	scrapedAt := s.now()
	norm := &Normalizer{
		Pages:           s.Pages,
		BaseURL:         base,
		DefaultCoverURL: s.DefaultCoverURL,
		Year:            listingYear(doc),
		Now:             s.now,
		Logger:          s.Logger,
	}

	var all []models.Album
	tables := doc.Find("table.wikitable")
	for i := range tables.Nodes {
		albums, err := s.scrapeTable(ctx, norm, tables.Eq(i), scrapedAt)
		if err != nil {
			return nil, err
		}
		if albums == nil {
			s.Logger.Debug("skipping table", zap.Int("table", i))
			continue
		}
		s.Logger.Info("scraped release table", zap.Int("table", i), zap.Int("albums", len(albums)))
		all = append(all, albums...)
	}
	return all, nil
}

// scrapeTable returns nil for tables that are not release tables.
func (s *WikiSource) scrapeTable(ctx context.Context, norm *Normalizer, table *goquery.Selection, scrapedAt time.Time) ([]models.Album, error) {
	rows := tableRows(table)
	if len(rows) == 0 || !IsReleaseTable(rows[0]) {
		return nil, nil
	}

	raws := ExpandRows(rows[1:])
	normalized := make([]Normalized, 0, len(raws))
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("wiki: %w", err)
		}
		normalized = append(normalized, norm.Normalize(ctx, raw))
	}
	return ResolvePending(normalized, scrapedAt), nil
}

func (s *WikiSource) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// listingYear reads the year from the page heading ("List of 2021 albums").
// 0 when the heading has none.
func listingYear(doc *goquery.Document) int {
	heading := doc.Find("#firstHeading").First().Text()
	if heading == "" {
		heading = doc.Find("title").First().Text()
	}
	m := listingYearRe.FindStringSubmatch(heading)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}
