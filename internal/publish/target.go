package publish

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/pagepublisher/internal/config"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

// Target is a publish environment backed by one bucket.
type Target struct {
	Name       string
	Bucket     string
	SiteURL    string
	CDNBaseURL string
}

// Targets maps environment names onto targets.
type Targets map[string]Target

// TargetsFromConfig builds the target map from configuration.
func TargetsFromConfig(cfgs []config.TargetConfig) Targets {
	t := make(Targets, len(cfgs))
	for _, c := range cfgs {
		t[c.Name] = Target{Name: c.Name, Bucket: c.Bucket, SiteURL: c.SiteURL, CDNBaseURL: c.CDNBaseURL}
	}
	return t
}

// Resolve returns the target for env or a config error.
func (t Targets) Resolve(env string) (Target, error) {
	target, ok := t[env]
	if !ok || target.Bucket == "" {
		return Target{}, derrors.ConfigError("unknown target environment").WithContext("target", env).Build()
	}
	return target, nil
}

// NavTreeKey is the artifact key of the navigation tree.
const NavTreeKey = "navtree.json"

// ArtifactKey maps a document path onto its blob key: the path without a
// leading slash, "index.html" for the site root.
func ArtifactKey(docPath string) string {
	k := strings.TrimLeft(strings.TrimSpace(docPath), "/")
	if k == "" {
		return "index.html"
	}
	return path.Clean(k)
}
