package feeds

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/blob"
	"git.home.luguber.info/inful/pagepublisher/internal/config"
	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/metrics"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

// Kind aliases the configured feed kind.
type Kind = config.FeedKind

// Spec describes one feed artifact.
type Spec struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Key      string `json:"key"`
	Category string `json:"category,omitempty"`
	Title    string `json:"title,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// SpecsFromConfig converts configured feeds.
func SpecsFromConfig(cfgs []config.FeedConfig) []Spec {
	out := make([]Spec, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, Spec{Name: c.Name, Kind: c.Kind, Key: c.Key, Category: c.Category, Title: c.Title, Limit: c.Limit})
	}
	return out
}

// Outcome is the per-feed result.
type Outcome struct {
	Name     string `json:"name"`
	HasError bool   `json:"hasError"`
	ErrorMsg string `json:"errormsg,omitempty"`
}

// Report is the result of PublishFeeds. Success is the AND of all
// outcomes.
type Report struct {
	publish.Result
	Outcomes []Outcome
}

// MarshalJSON renders the publish result fields plus the outcomes.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := struct {
		Success bool      `json:"success"`
		Log     []string  `json:"log"`
		Error   string    `json:"error,omitempty"`
		Feeds   []Outcome `json:"feeds"`
	}{Success: r.Success, Log: r.Log, Feeds: r.Outcomes}
	if out.Log == nil {
		out.Log = []string{}
	}
	if out.Feeds == nil {
		out.Feeds = []Outcome{}
	}
	if r.Err != nil {
		out.Error = derrors.Describe(r.Err)
	}
	return json.Marshal(out)
}

// Generator builds and uploads feeds.
type Generator struct {
	repo     store.Repository
	blobs    blob.Store
	targets  publish.Targets
	configID string
	recorder metrics.Recorder
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithClock overrides the time used for feed-level timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithConfigDocument sets the id of the site settings record.
func WithConfigDocument(id string) Option {
	return func(g *Generator) {
		if id != "" {
			g.configID = id
		}
	}
}

// NewGenerator returns a Generator.
func NewGenerator(repo store.Repository, blobs blob.Store, targets publish.Targets, opts ...Option) *Generator {
	g := &Generator{
		repo:     repo,
		blobs:    blobs,
		targets:  targets,
		configID: content.DefaultConfigID,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PublishFeeds renders and uploads every spec to env's bucket. Err is set
// only when the target or settings cannot be resolved.
func (g *Generator) PublishFeeds(ctx context.Context, env string, specs []Spec, global *content.GlobalConfig) *Report {
	rep := &Report{}
	target, err := g.targets.Resolve(env)
	if err != nil {
		rep.Fail(err)
		return rep
	}
	var settings content.GlobalConfig
	if global != nil {
		settings = global.Clone()
	} else if settings, err = publish.LoadGlobalConfig(ctx, g.repo, g.configID); err != nil {
		rep.Fail(err)
		return rep
	}
	settings = settings.WithDefaults(target.SiteURL, target.CDNBaseURL)
	logger := g.logger.With(logfields.Target(env), logfields.Bucket(target.Bucket))

	rep.Success = true
	for _, spec := range specs {
		out := Outcome{Name: spec.Name}
		start := time.Now()
		n, err := g.publishOne(ctx, target.Bucket, spec, settings)
		g.recorder.IncFeedOutcome(string(spec.Kind), err == nil)
		if err != nil {
			out.HasError = true
			out.ErrorMsg = derrors.Describe(err)
			rep.Success = false
			rep.Logf("feed %s: failed: %s", spec.Name, out.ErrorMsg)
			logger.Error("Feed generation failed", logfields.Feed(spec.Name), logfields.Error(err))
		} else {
			rep.Logf("feed %s: %d entries published to %s/%s", spec.Name, n, target.Bucket, spec.Key)
			logger.Info("Feed published", logfields.Feed(spec.Name), logfields.Key(spec.Key),
				logfields.Count(n), logfields.Duration(time.Since(start)))
		}
		rep.Outcomes = append(rep.Outcomes, out)
	}
	return rep
}

func (g *Generator) publishOne(ctx context.Context, bucket string, spec Spec, global content.GlobalConfig) (int, error) {
	kind := config.NormalizeFeedKind(string(spec.Kind))
	if kind == "" {
		return 0, derrors.FeedError("unknown feed kind").WithContext("feed", spec.Name).WithContext("kind", string(spec.Kind)).Build()
	}
	if spec.Key == "" {
		return 0, derrors.ValidationError("feed key is required").WithContext("feed", spec.Name).Build()
	}
	if kind != config.FeedSitemap && spec.Category == "" {
		return 0, derrors.ValidationError("feed category is required").WithContext("feed", spec.Name).Build()
	}

	var (
		pages []*content.Document
		err   error
	)
	if kind == config.FeedSitemap {
		pages, err = g.sitemapPages(ctx)
	} else {
		pages, err = g.categoryPages(ctx, spec.Category)
	}
	if err != nil {
		return 0, derrors.WrapError(err, derrors.CategoryFeed, "load feed pages").WithContext("feed", spec.Name).Build()
	}
	if spec.Limit > 0 && len(pages) > spec.Limit {
		pages = pages[:spec.Limit]
	}

	var (
		data        []byte
		contentType string
	)
	switch kind {
	case config.FeedSitemap:
		data, err = renderSitemap(pages, global)
		contentType = "text/xml"
	case config.FeedAtom:
		data, err = renderAtom(spec, pages, global, g.now())
		contentType = "application/atom+xml"
	default:
		data, err = renderJSON(pages, global)
		contentType = "application/json"
	}
	if err != nil {
		return 0, derrors.WrapError(err, derrors.CategoryFeed, "render feed").WithContext("feed", spec.Name).Build()
	}
	if err := g.blobs.Upload(ctx, bucket, spec.Key, data, blob.UploadOptions{ContentType: contentType, Public: true}); err != nil {
		return 0, derrors.BlobError("upload feed").WithCause(err).WithContext("feed", spec.Name).WithContext("key", spec.Key).Build()
	}
	return len(pages), nil
}
