// Package responses defines request and response bodies of the HTTP API.
package responses

import (
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/feeds"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
)

// PublishRequest is the optional body of a single page publish. Document
// publishes the given record instead of the stored one.
type PublishRequest struct {
	Document *content.Document     `json:"document,omitempty"`
	Global   *content.GlobalConfig `json:"global,omitempty"`
}

// BulkPublishRequest is the body of a bulk publish.
type BulkPublishRequest struct {
	publish.BulkRequest
	Global *content.GlobalConfig `json:"global,omitempty"`
}

// FeedsRequest is the body of a feed publish. An empty Feeds list means
// every configured feed.
type FeedsRequest struct {
	Feeds  []feeds.Spec          `json:"feeds,omitempty"`
	Global *content.GlobalConfig `json:"global,omitempty"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Targets   []string  `json:"targets"`
	Store     string    `json:"store"`
}
