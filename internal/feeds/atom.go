package feeds

import (
	"encoding/xml"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/render"
)

const atomNS = "http://www.w3.org/2005/Atom"

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	NS      string      `xml:"xmlns,attr"`
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	ID      string     `xml:"id"`
	Updated string     `xml:"updated"`
	Links   []atomLink `xml:"link"`
	Summary string     `xml:"summary,omitempty"`
}

func renderAtom(spec Spec, pages []*content.Document, global content.GlobalConfig, now time.Time) ([]byte, error) {
	title := spec.Title
	if title == "" {
		title = global.SiteTitle
	}
	if title == "" {
		title = spec.Name
	}
	feed := atomFeed{
		NS:    atomNS,
		Title: title,
		ID:    render.ResolveURL(global.SiteURL, spec.Key),
		Links: []atomLink{{Href: render.ResolveURL(global.SiteURL, spec.Key), Rel: "self"}},
	}
	updated := time.Time{}
	for _, p := range pages {
		link := pageURL(global, p.Path)
		entry := atomEntry{
			Title:   p.Title,
			ID:      link,
			Links:   []atomLink{{Href: link, Rel: "alternate"}},
			Summary: p.Description,
		}
		if t, ok := effectiveDate(p); ok {
			entry.Updated = t.UTC().Format(time.RFC3339)
			if t.After(updated) {
				updated = t
			}
		} else {
			entry.Updated = now.UTC().Format(time.RFC3339)
		}
		if p.CoverImage != "" {
			entry.Links = append(entry.Links, atomLink{Href: render.ResolveURL(global.CDNBaseURL, p.CoverImage), Rel: "enclosure"})
		}
		feed.Entries = append(feed.Entries, entry)
	}
	if updated.IsZero() {
		updated = now
	}
	feed.Updated = updated.UTC().Format(time.RFC3339)
	return marshalXML(feed)
}
