package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripRelProto(t *testing.T) {
	tests := map[string]string{
		"//wiki.org":     "wiki.org",
		"testurl.com":    "testurl.com",
		"test//wiki.org": "test//wiki.org",
		"":               "",
		"/":              "/",
		"//":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripRelProto(in), "StripRelProto(%q)", in)
	}
}

func TestAbsoluteImageURL(t *testing.T) {
	assert.Equal(t, "https://upload.wikimedia.org/a.jpg", AbsoluteImageURL("//upload.wikimedia.org/a.jpg"))
	assert.Equal(t, "https://example.org/b.png", AbsoluteImageURL("https://example.org/b.png"))
	assert.Equal(t, "/img/c.svg", AbsoluteImageURL("/img/c.svg"))
}

func TestStripFootnotes(t *testing.T) {
	assert.Equal(t, "Pop", StripFootnotes("Pop[1]"))
	assert.Equal(t, "Soul", StripFootnotes(" Soul[note 2][3] "))
	assert.Equal(t, "R&B", StripFootnotes("R&B"))
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestInfoboxGenres_Links(t *testing.T) {
	doc := mustDoc(t, `<table class="infobox"><tbody>
<tr><th>Born</th><td>1990</td></tr>
<tr><th>Genres</th><td><a href="/wiki/Pop">Pop[1]</a><sup>[2]</sup>, <a href="/wiki/Soul">Soul</a></td></tr>
</tbody></table>`)

	assert.Equal(t, []string{"Pop", "Soul"}, InfoboxGenres(doc))
}

func TestInfoboxGenres_PlainText(t *testing.T) {
	doc := mustDoc(t, `<table class="infobox"><tr><th>Genre</th><td>Hip hop<br>Trap, drill<sup>[4]</sup></td></tr></table>`)

	assert.Equal(t, []string{"Hip hop", "Trap", "drill"}, InfoboxGenres(doc))
}

func TestInfoboxGenres_Missing(t *testing.T) {
	assert.Nil(t, InfoboxGenres(nil))
	assert.Nil(t, InfoboxGenres(mustDoc(t, `<p>no infobox</p>`)))
}

func TestInfoboxImage(t *testing.T) {
	doc := mustDoc(t, `<table class="infobox"><tr><td><img src="//upload.wikimedia.org/cover.jpg"></td></tr></table>`)
	src, ok := InfoboxImage(doc)
	assert.True(t, ok)
	assert.Equal(t, "https://upload.wikimedia.org/cover.jpg", src)

	_, ok = InfoboxImage(mustDoc(t, `<table class="infobox"><tr><td>text</td></tr></table>`))
	assert.False(t, ok)

	_, ok = InfoboxImage(nil)
	assert.False(t, ok)
}
