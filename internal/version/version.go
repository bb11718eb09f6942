package version

// Version is overridden at build time:
// go build -ldflags "-X git.home.luguber.info/inful/pagepublisher/internal/version.Version=v1.2.0".
var Version = "unknown"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info is the version triple as reported by the CLI and /health.
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Current returns the linked-in build information.
func Current() Info {
	return Info{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}
}
