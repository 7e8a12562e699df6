package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// ErrNoCell is returned for a cell index past the end of a row.
var ErrNoCell = errors.New("no such cell")

// releaseHeader is the header of a month/quarter release table.
var releaseHeader = [...]string{"Release date", "Artist", "Album", "Genre", "Label"}

// Row is the narrow view of a table row the scraper needs.
type Row interface {
	Len() int
	CellText(i int) (string, error)
	Attr(i int, name string) (string, bool)
	LinkHref(i int) (string, bool)
}

// IsReleaseTable reports whether header is the fixed five-column release
// header. Malformed rows are not release tables.
func IsReleaseTable(header Row) bool {
	if header == nil || header.Len() < len(releaseHeader) {
		return false
	}
	for i, want := range releaseHeader {
		got, err := header.CellText(i)
		if err != nil {
			return false
		}
		if strings.TrimSpace(got) != want {
			return false
		}
	}
	return true
}

// htmlRow is a Row backed by the td/th children of a <tr>.
type htmlRow struct {
	cells []*goquery.Selection
}

func newHTMLRow(tr *goquery.Selection) htmlRow {
	var cells []*goquery.Selection
	tr.ChildrenFiltered("td, th").Each(func(_ int, s *goquery.Selection) {
		cells = append(cells, s)
	})
	return htmlRow{cells: cells}
}

// tableRows returns the rows of a table in document order, including the
// header row. Nested tables are ignored.
func tableRows(table *goquery.Selection) []Row {
	var rows []Row
	table.ChildrenFiltered("tbody, thead").ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, newHTMLRow(tr))
	})
	table.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, newHTMLRow(tr))
	})
	return rows
}

func (r htmlRow) Len() int { return len(r.cells) }

func (r htmlRow) CellText(i int) (string, error) {
	if i < 0 || i >= len(r.cells) {
		return "", fmt.Errorf("cell %d of %d: %w", i, len(r.cells), ErrNoCell)
	}
	return cleanText(r.cells[i]), nil
}

func (r htmlRow) Attr(i int, name string) (string, bool) {
	if i < 0 || i >= len(r.cells) {
		return "", false
	}
	return r.cells[i].Attr(name)
}

func (r htmlRow) LinkHref(i int) (string, bool) {
	if i < 0 || i >= len(r.cells) {
		return "", false
	}
	return firstArticleLink(r.cells[i])
}

// firstArticleLink returns the href of the first link in s that points at an
// existing article. Red links and footnote anchors are skipped.
func firstArticleLink(s *goquery.Selection) (string, bool) {
	var href string
	s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, _ := a.Attr("href")
		if h == "" || strings.HasPrefix(h, "#") || a.HasClass("new") || strings.Contains(h, "redlink=1") {
			return true
		}
		href = h
		return false
	})
	return href, href != ""
}

// cleanText is the visible text of s with <br> as a space, footnote markers
// dropped, whitespace collapsed and NFC applied.
func cleanText(s *goquery.Selection) string {
	c := s.Clone()
	c.Find("sup, style, .sortkey").Remove()
	c.Find("br").ReplaceWithHtml(" ")
	return collapseSpace(norm.NFC.String(c.Text()))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
