package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><head><title>List of 2021 albums - Wikipedia</title></head><body>
<h1 id="firstHeading">List of 2021 albums</h1>
<table class="wikitable"><tbody>
<tr><th>Year</th><th>Notes</th></tr>
<tr><td>2020</td><td>not a release table</td></tr>
</tbody></table>
<table class="wikitable"><tbody>
<tr><th>Release date</th><th>Artist</th><th>Album</th><th>Genre</th><th>Label</th></tr>
<tr><td rowspan="2">May 3</td><td><a href="/wiki/Singer">Singer</a></td><td><a href="/wiki/Record">Record</a></td><td>Pop, Rock</td><td>L</td></tr>
<tr><td><a href="/wiki/Band">Band</a></td><td>TBA</td><td>Metal</td><td>L</td></tr>
<tr><td>May 21</td><td>Duo</td><td>Second</td><td>Folk</td><td>L</td></tr>
<tr><td>TBA</td><td>Later</td><td>Someday</td><td>Jazz</td><td>L</td></tr>
</tbody></table>
<table class="wikitable"><tbody>
<tr><th>Release date</th><th>Artist</th><th>Album</th><th>Genre</th><th>Label</th></tr>
<tr><td>TBA</td><td>Early</td><td>Pending</td><td>Ska</td><td>L</td></tr>
</tbody></table>
</body></html>`

func wikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/wiki/List_of_2021_albums": listingPage,
		"/wiki/Singer":              `<table class="infobox"><tr><td><img src="//img.test/singer.jpg"></td></tr><tr><th>Genres</th><td><a>Soul</a></td></tr></table>`,
		"/wiki/Record":              `<table class="infobox"><tr><td><img src="//img.test/record.jpg"></td></tr></table>`,
		// /wiki/Band is missing on purpose
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWikiSource_FetchAll(t *testing.T) {
	srv := wikiServer(t)
	src := NewWikiSource(srv.URL+"/wiki/List_of_2021_albums", NewFetcher(time.Second, "test"), "/img/default.svg", nil)
	src.Now = func() time.Time { return time.Date(2021, 8, 15, 0, 0, 0, 0, time.UTC) }

	albums, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, albums, 5)

	a := albums[0]
	assert.Equal(t, "Singer", a.Artist)
	assert.Equal(t, "Record", a.Title)
	assert.Equal(t, "2021-05-03", a.DateString())
	assert.Equal(t, []string{"pop", "rock", "soul"}, []string(a.Genres))
	assert.Equal(t, "https://img.test/record.jpg", a.CoverURL)

	// carried date, artist page 404
	b := albums[1]
	assert.Equal(t, "Band", b.Artist)
	assert.True(t, b.IsPlaceholder())
	assert.Equal(t, "2021-05-03", b.DateString())
	assert.Equal(t, "/img/default.svg", b.CoverURL)

	assert.Equal(t, "2021-05-21", albums[2].DateString())

	// pending date resolves to the end of the table's first month
	assert.Equal(t, "Later", albums[3].Artist)
	assert.Equal(t, "2021-05-31", albums[3].DateString())

	// table starting with a pending row falls back to the scrape month
	assert.Equal(t, "Early", albums[4].Artist)
	assert.Equal(t, "2021-08-31", albums[4].DateString())
}

func TestWikiSource_ListingFailureIsFatal(t *testing.T) {
	srv := wikiServer(t)
	src := NewWikiSource(srv.URL+"/wiki/Nope", NewFetcher(time.Second, "test"), "", nil)

	_, err := src.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
}

func TestListingYear(t *testing.T) {
	assert.Equal(t, 2021, listingYear(mustDoc(t, `<h1 id="firstHeading">List of 2021 albums</h1>`)))
	assert.Equal(t, 1999, listingYear(mustDoc(t, `<title>List of 1999 albums</title>`)))
	assert.Equal(t, 0, listingYear(mustDoc(t, `<p>nothing</p>`)))
}

func TestMirror_RecordsPages(t *testing.T) {
	srv := wikiServer(t)
	dir := t.TempDir()
	mirror := &Mirror{Dir: dir, Pages: NewFetcher(time.Second, "test")}

	src := NewWikiSource(srv.URL+"/wiki/List_of_2021_albums", mirror, "", nil)
	_, err := src.FetchAll(context.Background())
	require.NoError(t, err)

	// listing, Singer, Record; Band 404s
	assert.Equal(t, 3, mirror.Saved())
	b, err := os.ReadFile(filepath.Join(dir, "wiki", "Singer.html"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "singer.jpg")
}

func TestMirrorFile(t *testing.T) {
	assert.Equal(t, filepath.Join("snap", "wiki", "A.html"), MirrorFile("snap", "/wiki/A"))
	assert.Equal(t, filepath.Join("snap", "etc", "passwd.html"), MirrorFile("snap", "/../../etc/passwd"))
	assert.Equal(t, filepath.Join("snap", "index.html"), MirrorFile("snap", "/"))
}
