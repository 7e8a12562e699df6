package scraper

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow is a Row built from plain strings.
type fakeRow struct {
	cells []string
	attrs map[int]map[string]string
	links map[int]string
	fail  bool // CellText always errors
}

func (r fakeRow) Len() int { return len(r.cells) }

func (r fakeRow) CellText(i int) (string, error) {
	if r.fail {
		return "", fmt.Errorf("broken row")
	}
	if i < 0 || i >= len(r.cells) {
		return "", ErrNoCell
	}
	return r.cells[i], nil
}

func (r fakeRow) Attr(i int, name string) (string, bool) {
	v, ok := r.attrs[i][name]
	return v, ok
}

func (r fakeRow) LinkHref(i int) (string, bool) {
	v, ok := r.links[i]
	return v, ok
}

func spanRow(n int, date, artist, album string) fakeRow {
	return fakeRow{
		cells: []string{date, artist, album, "Pop", "Label"},
		attrs: map[int]map[string]string{0: {"rowspan": strconv.Itoa(n)}},
	}
}

func bodyRow(artist, album string) fakeRow {
	return fakeRow{cells: []string{artist, album, "Rock", "Label"}}
}

func datedRow(date, artist, album string) fakeRow {
	return fakeRow{cells: []string{date, artist, album, "Jazz", "Label"}}
}

func dates(raws []RawRow) []string {
	out := make([]string, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.ReleaseDateText)
	}
	return out
}

func TestExpandRows_SpanCoversTotalRows(t *testing.T) {
	rows := []Row{
		spanRow(3, "5", "A", "One"),
		bodyRow("B", "Two"),
		bodyRow("C", "Three"),
		datedRow("12", "D", "Four"),
	}

	raws := ExpandRows(rows)

	require.Len(t, raws, 4)
	assert.Equal(t, []string{"5", "5", "5", "12"}, dates(raws))
	assert.Equal(t, "C", raws[2].ArtistText)
	assert.Equal(t, "Three", raws[2].TitleText)
	assert.Equal(t, "Rock", raws[2].GenreText)
	assert.Equal(t, "D", raws[3].ArtistText)
}

func TestExpandRows_ConsecutiveSpans(t *testing.T) {
	rows := []Row{
		spanRow(2, "1", "A", "One"),
		bodyRow("B", "Two"),
		spanRow(2, "8", "C", "Three"),
		bodyRow("D", "Four"),
		datedRow("15", "E", "Five"),
	}

	assert.Equal(t, []string{"1", "1", "8", "8", "15"}, dates(ExpandRows(rows)))
}

func TestExpandRows_BadSpanValues(t *testing.T) {
	for _, v := range []string{"1", "0", "-2", "x", ""} {
		rows := []Row{
			fakeRow{
				cells: []string{"3", "A", "One", "Pop", "L"},
				attrs: map[int]map[string]string{0: {"rowspan": v}},
			},
			datedRow("4", "B", "Two"),
		}
		assert.Equal(t, []string{"3", "4"}, dates(ExpandRows(rows)), "rowspan=%q", v)
	}
}

func TestExpandRows_DropsShortAndBrokenRows(t *testing.T) {
	rows := []Row{
		datedRow("2", "A", "One"),
		fakeRow{cells: []string{"only", "three", "cells"}},
		fakeRow{cells: []string{"1", "2", "3", "4", "5"}, fail: true},
		datedRow("9", "B", "Two"),
	}

	raws := ExpandRows(rows)
	assert.Equal(t, []string{"2", "9"}, dates(raws))
}

func TestExpandRows_DropsRowsWithoutNames(t *testing.T) {
	rows := []Row{
		spanRow(3, "5", "A", ""),
		bodyRow("", "Two"),
		bodyRow("C", "Three"),
		datedRow("9", " ", "Four"),
		datedRow("12", "E", "Five"),
	}

	raws := ExpandRows(rows)

	require.Len(t, raws, 2)
	assert.Equal(t, []string{"5", "12"}, dates(raws))
	assert.Equal(t, "C", raws[0].ArtistText)
	assert.Equal(t, "E", raws[1].ArtistText)
}

func TestExpandRows_CarriesDateLink(t *testing.T) {
	head := spanRow(2, "5", "A", "One")
	head.links = map[int]string{1: "/wiki/A", 2: "/wiki/One"}
	tail := bodyRow("B", "Two")
	tail.links = map[int]string{0: "/wiki/B"}

	raws := ExpandRows([]Row{head, tail})

	require.Len(t, raws, 2)
	assert.Equal(t, "/wiki/A", raws[0].ArtistHref)
	assert.Equal(t, "/wiki/One", raws[0].TitleHref)
	assert.Equal(t, "/wiki/B", raws[1].ArtistHref)
	assert.Empty(t, raws[1].TitleHref)
}

func TestExpandRows_Empty(t *testing.T) {
	assert.Empty(t, ExpandRows(nil))
}
