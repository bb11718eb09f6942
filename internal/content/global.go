package content

import "maps"

// DefaultConfigID is the id of the record holding site-wide settings.
const DefaultConfigID = "config"

// GlobalConfig holds site-wide values merged into every render.
type GlobalConfig struct {
	Vars       map[string]any `json:"vars,omitempty"`
	Navigation bool           `json:"navigation,omitempty"`
	CDNBaseURL string         `json:"cdnBaseUrl,omitempty"`
	SiteURL    string         `json:"siteUrl,omitempty"`
	SiteTitle  string         `json:"siteTitle,omitempty"`
}

// Clone returns a copy whose Vars map can be modified independently.
func (g GlobalConfig) Clone() GlobalConfig {
	cp := g
	if g.Vars != nil {
		cp.Vars = maps.Clone(g.Vars)
	}
	return cp
}

// WithDefaults fills empty URL fields from fallback values, typically the
// target environment's configured site and CDN URLs.
func (g GlobalConfig) WithDefaults(siteURL, cdnBaseURL string) GlobalConfig {
	cp := g.Clone()
	if cp.SiteURL == "" {
		cp.SiteURL = siteURL
	}
	if cp.CDNBaseURL == "" {
		cp.CDNBaseURL = cdnBaseURL
	}
	return cp
}
