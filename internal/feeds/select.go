package feeds

import (
	"context"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/render"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

var listingFields = []string{
	"path", "title", "description", "categories", "dt", "pubdate",
	"coverImage", "updatedAt", "publishedAt", "sitemap",
}

// sitemapPages returns eligible pages ordered by path. The site root is
// left out.
func (g *Generator) sitemapPages(ctx context.Context) ([]*content.Document, error) {
	pages, err := store.Filter(ctx, g.repo, content.TypePage, func(d *content.Document) bool {
		return d.SitemapEligible && !isRoot(d.Path)
	}, listingFields...)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(pages, func(a, b *content.Document) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return pages, nil
}

// categoryPages returns pages tagged category, newest effective date
// first. Undated pages sort last.
func (g *Generator) categoryPages(ctx context.Context, category string) ([]*content.Document, error) {
	pages, err := store.Filter(ctx, g.repo, content.TypePage, func(d *content.Document) bool {
		return d.HasCategory(category)
	}, listingFields...)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(pages, func(a, b *content.Document) int {
		ta, oka := effectiveDate(a)
		tb, okb := effectiveDate(b)
		switch {
		case oka && !okb:
			return -1
		case !oka && okb:
			return 1
		case oka && okb && !ta.Equal(tb):
			return tb.Compare(ta)
		}
		return strings.Compare(a.ID, b.ID)
	})
	return pages, nil
}

// effectiveDate is dt when it parses, else pubdate.
func effectiveDate(d *content.Document) (time.Time, bool) {
	if t, ok := render.ParseDate(d.Date); ok {
		return t, true
	}
	return render.ParseDate(d.PubDate)
}

func isRoot(p string) bool {
	return strings.Trim(strings.TrimSpace(p), "/") == ""
}

func pageURL(global content.GlobalConfig, p string) string {
	return render.ResolveURL(global.SiteURL, p)
}
