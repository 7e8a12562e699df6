package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var footnoteRe = regexp.MustCompile(`\[[^\]]*\]`)

// StripFootnotes removes bracketed reference markers such as "[1]".
func StripFootnotes(s string) string {
	return strings.TrimSpace(footnoteRe.ReplaceAllString(s, ""))
}

// StripRelProto removes a leading protocol-relative "//". Slashes anywhere
// else are left alone.
func StripRelProto(s string) string {
	return strings.TrimPrefix(s, "//")
}

// AbsoluteImageURL rewrites a protocol-relative URL to https.
func AbsoluteImageURL(s string) string {
	if strings.HasPrefix(s, "//") {
		return "https://" + StripRelProto(s)
	}
	return s
}

// InfoboxGenres returns the linked tokens of the infobox "Genres" row. When
// the row has no links its text is split on commas and line breaks instead.
// Tokens are returned as found; callers normalize case.
func InfoboxGenres(doc *goquery.Document) []string {
	if doc == nil {
		return nil
	}

	var value *goquery.Selection
	doc.Find("table.infobox tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		label := collapseSpace(tr.ChildrenFiltered("th").First().Text())
		if label != "Genres" && label != "Genre" {
			return true
		}
		value = tr.ChildrenFiltered("td").First()
		return false
	})
	if value == nil || value.Length() == 0 {
		return nil
	}

	var tokens []string
	value.Find("a").Each(func(_ int, a *goquery.Selection) {
		if t := StripFootnotes(collapseSpace(a.Text())); t != "" {
			tokens = append(tokens, t)
		}
	})
	if len(tokens) > 0 {
		return tokens
	}

	c := value.Clone()
	c.Find("sup").Remove()
	c.Find("br").ReplaceWithHtml(",")
	for _, t := range strings.Split(c.Text(), ",") {
		if t = StripFootnotes(collapseSpace(t)); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// InfoboxImage returns the absolute URL of the first infobox image, if any.
func InfoboxImage(doc *goquery.Document) (string, bool) {
	if doc == nil {
		return "", false
	}
	src, ok := doc.Find("table.infobox img").First().Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return "", false
	}
	return AbsoluteImageURL(src), true
}
