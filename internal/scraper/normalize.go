package scraper

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"albumhub/pkg/models"
)

// dateLayouts are tried in order against "<cell text> <year>".
var dateLayouts = []string{
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// PageFetcher fetches and parses a detail page.
type PageFetcher interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

// Normalizer turns RawRows into albums, enriching them from the album and
// artist detail pages.
type Normalizer struct {
	Pages           PageFetcher
	BaseURL         *url.URL
	DefaultCoverURL string
	Year            int // year appended to date cells; 0 means Now().Year()
	Now             func() time.Time
	Logger          *zap.Logger
}

// Normalized is a normalized row. Pending means the release date is not
// known yet and ReleaseDate is still zero.
type Normalized struct {
	Album   models.Album
	Pending bool
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n *Normalizer) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}

// Normalize converts one row. Detail-page failures only remove that page's
// contribution.
func (n *Normalizer) Normalize(ctx context.Context, raw RawRow) Normalized {
	albumDoc, artistDoc := n.detailPages(ctx, raw)

	genres := models.NewGenreSet(splitGenres(raw.GenreText)...)
	genres = genres.Add(InfoboxGenres(artistDoc)...)

	out := Normalized{
		Album: models.Album{
			Artist:   raw.ArtistText,
			Title:    raw.TitleText,
			Genres:   genres,
			CoverURL: n.coverURL(albumDoc, artistDoc),
		},
	}

	year := n.Year
	if year == 0 {
		year = n.now().Year()
	}
	if d, ok := ParseReleaseDate(raw.ReleaseDateText, year); ok {
		out.Album.ReleaseDate = d
	} else {
		out.Pending = true
		if !isTBA(raw.ReleaseDateText) {
			n.logger().Debug("unparsed release date, treating as TBA",
				zap.String("artist", raw.ArtistText),
				zap.String("title", raw.TitleText),
				zap.String("date", raw.ReleaseDateText))
		}
	}
	return out
}

// detailPages fetches the album and artist pages concurrently. Either may
// come back nil.
func (n *Normalizer) detailPages(ctx context.Context, raw RawRow) (albumDoc, artistDoc *goquery.Document) {
	var g errgroup.Group
	g.Go(func() error {
		albumDoc = n.page(ctx, raw.TitleHref)
		return nil
	})
	g.Go(func() error {
		artistDoc = n.page(ctx, raw.ArtistHref)
		return nil
	})
	_ = g.Wait()
	return albumDoc, artistDoc
}

func (n *Normalizer) page(ctx context.Context, href string) *goquery.Document {
	if href == "" || n.Pages == nil {
		return nil
	}
	u := n.resolve(href)
	doc, err := n.Pages.Document(ctx, u)
	if err != nil {
		n.logger().Debug("detail page unavailable", zap.String("url", u), zap.Error(err))
		return nil
	}
	return doc
}

func (n *Normalizer) resolve(href string) string {
	if n.BaseURL == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return n.BaseURL.ResolveReference(ref).String()
}

// coverURL walks album page -> artist page -> default.
func (n *Normalizer) coverURL(albumDoc, artistDoc *goquery.Document) string {
	if src, ok := InfoboxImage(albumDoc); ok {
		return src
	}
	if src, ok := InfoboxImage(artistDoc); ok {
		return src
	}
	return n.DefaultCoverURL
}

func splitGenres(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = StripFootnotes(parts[i])
	}
	return parts
}

func isTBA(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), models.PlaceholderTitle)
}

// ParseReleaseDate parses a cell such as "January 8" in the given year. TBA
// and unparseable text report false.
func ParseReleaseDate(text string, year int) (time.Time, bool) {
	text = collapseSpace(text)
	if text == "" || isTBA(text) {
		return time.Time{}, false
	}
	withYear := text + " " + strconv.Itoa(year)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, withYear); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolvePending gives every pending row of one table the last day of the
// month of the table's first row. When the first row is pending itself the
// scrape month is used.
func ResolvePending(rows []Normalized, scrapedAt time.Time) []models.Album {
	out := make([]models.Album, 0, len(rows))
	if len(rows) == 0 {
		return out
	}

	anchor := scrapedAt
	if !rows[0].Pending {
		anchor = rows[0].Album.ReleaseDate
	}
	monthEnd := models.MonthEnd(anchor)

	for _, r := range rows {
		a := r.Album
		if r.Pending {
			a.ReleaseDate = monthEnd
		}
		out = append(out, a)
	}
	return out
}
