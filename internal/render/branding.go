package render

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// BrandingComment is stamped into every published page.
const BrandingComment = "<!-- Published with pagepublisher -->"

// ErrorBlock is the inline placeholder for content that failed to render.
func ErrorBlock(msg string) string {
	return `<div class="publish-error">` + html.EscapeString(msg) + `</div>`
}

// errorMarker is the inline placeholder for a bad field value.
func errorMarker(msg string) string {
	return `<span class="publish-error">` + html.EscapeString(msg) + `</span>`
}

// InjectBranding inserts BrandingComment immediately after the first
// <head> start tag, matched case-insensitively. Pages without a head are
// returned unchanged.
func InjectBranding(page string) string {
	z := html.NewTokenizer(strings.NewReader(page))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return page
		}
		offset += len(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, _ := z.TagName()
		if bytes.Equal(name, []byte("head")) {
			return page[:offset] + BrandingComment + page[offset:]
		}
	}
}
