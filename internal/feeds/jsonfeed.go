package feeds

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/render"
)

type jsonEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Path        string   `json:"path"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"`
	CoverImage  string   `json:"coverImage,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

func renderJSON(pages []*content.Document, global content.GlobalConfig) ([]byte, error) {
	entries := make([]jsonEntry, 0, len(pages))
	for _, p := range pages {
		e := jsonEntry{
			ID:          p.ID,
			Title:       p.Title,
			Path:        p.Path,
			URL:         pageURL(global, p.Path),
			Description: p.Description,
			CoverImage:  render.ResolveURL(global.CDNBaseURL, p.CoverImage),
			Categories:  p.Categories,
		}
		if t, ok := effectiveDate(p); ok {
			e.Date = t.UTC().Format(time.RFC3339)
		}
		entries = append(entries, e)
	}
	return json.Marshal(entries)
}
