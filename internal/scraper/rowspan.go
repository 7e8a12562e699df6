package scraper

import (
	"strconv"
	"strings"
)

// Column positions in an expanded release row.
const (
	colDate = iota
	colArtist
	colAlbum
	colGenre
	colLabel
	rowWidth
)

// RawRow is one body row of a release table with the release date carried
// down from a spanning cell where needed.
type RawRow struct {
	ReleaseDateText string
	ArtistText      string
	ArtistHref      string
	TitleText       string
	TitleHref       string
	GenreText       string
	LabelText       string
}

// carriedRow is a row whose date cell lives in an earlier row.
type carriedRow struct {
	span Row
	row  Row
}

func (c carriedRow) Len() int { return c.row.Len() + 1 }

func (c carriedRow) CellText(i int) (string, error) {
	if i == 0 {
		return c.span.CellText(0)
	}
	return c.row.CellText(i - 1)
}

func (c carriedRow) Attr(i int, name string) (string, bool) {
	if i == 0 {
		return c.span.Attr(0, name)
	}
	return c.row.Attr(i-1, name)
}

func (c carriedRow) LinkHref(i int) (string, bool) {
	if i == 0 {
		return c.span.LinkHref(0)
	}
	return c.row.LinkHref(i - 1)
}

// ExpandRows turns the body rows of a release table (header excluded) into
// RawRows. A date cell with rowspan=N covers its own row and the next N-1.
// Rows that do not yield five cells, or that have an empty artist or album
// cell, are dropped. A dropped row still consumes its carried date.
func ExpandRows(rows []Row) []RawRow {
	out := make([]RawRow, 0, len(rows))

	var span Row
	carry := 0

	for _, row := range rows {
		effective := row
		if carry > 0 {
			effective = carriedRow{span: span, row: row}
			carry--
		} else if n := rowSpan(row); n > 1 {
			span = row
			carry = n - 1
		}

		raw, ok := rawRow(effective)
		if !ok {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// rowSpan reads the rowspan of the row's first cell; 1 when absent.
func rowSpan(row Row) int {
	v, ok := row.Attr(colDate, "rowspan")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func rawRow(r Row) (RawRow, bool) {
	if r.Len() < rowWidth {
		return RawRow{}, false
	}

	var texts [rowWidth]string
	for i := range texts {
		t, err := r.CellText(i)
		if err != nil {
			return RawRow{}, false
		}
		texts[i] = t
	}

	// no identity without both names
	if strings.TrimSpace(texts[colArtist]) == "" || strings.TrimSpace(texts[colAlbum]) == "" {
		return RawRow{}, false
	}

	artistHref, _ := r.LinkHref(colArtist)
	titleHref, _ := r.LinkHref(colAlbum)

	return RawRow{
		ReleaseDateText: texts[colDate],
		ArtistText:      texts[colArtist],
		ArtistHref:      artistHref,
		TitleText:       texts[colAlbum],
		TitleHref:       titleHref,
		GenreText:       texts[colGenre],
		LabelText:       texts[colLabel],
	}, true
}
