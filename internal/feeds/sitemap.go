package feeds

import (
	"encoding/xml"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/render"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func renderSitemap(pages []*content.Document, global content.GlobalConfig) ([]byte, error) {
	set := urlSet{NS: sitemapNS, URLs: make([]sitemapURL, 0, len(pages))}
	for _, p := range pages {
		u := sitemapURL{Loc: pageURL(global, p.Path)}
		if t, ok := render.ParseDate(p.UpdatedAt); ok {
			u.LastMod = t.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	return marshalXML(set)
}

func marshalXML(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
