package publish

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagepublisher/internal/blob"
	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/metrics"
	"git.home.luguber.info/inful/pagepublisher/internal/navtree"
	"git.home.luguber.info/inful/pagepublisher/internal/queue"
	"git.home.luguber.info/inful/pagepublisher/internal/render"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

// DefaultWorkers is the bulk publish concurrency when none is configured.
const DefaultWorkers = 4

// Publisher coordinates the store, renderer, blob store and queue.
type Publisher struct {
	repo      store.Repository
	blobs     blob.Store
	queue     queue.Enqueuer
	targets   Targets
	subject   string
	configID  string
	workers   int
	templates render.TemplateSource
	recorder  metrics.Recorder
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithQueue enables search-index jobs on subject.
func WithQueue(q queue.Enqueuer, subject string) Option {
	return func(p *Publisher) {
		p.queue = q
		p.subject = subject
	}
}

// WithWorkers sets the bulk publish concurrency.
func WithWorkers(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithTemplateSource sets where template text for body-less layouts and
// fragments comes from.
func WithTemplateSource(src render.TemplateSource) Option {
	return func(p *Publisher) {
		if src != nil {
			p.templates = src
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Publisher) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithConfigDocument sets the id of the site settings record.
func WithConfigDocument(id string) Option {
	return func(p *Publisher) {
		if id != "" {
			p.configID = id
		}
	}
}

// New returns a Publisher.
func New(repo store.Repository, blobs blob.Store, targets Targets, opts ...Option) *Publisher {
	p := &Publisher{
		repo:      repo,
		blobs:     blobs,
		targets:   targets,
		configID:  content.DefaultConfigID,
		workers:   DefaultWorkers,
		templates: render.InlineSource{},
		recorder:  metrics.NoopRecorder{},
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Repository exposes the store the publisher reads from.
func (p *Publisher) Repository() store.Repository { return p.repo }

// Blobs exposes the artifact store.
func (p *Publisher) Blobs() blob.Store { return p.blobs }

// Targets exposes the configured environments.
func (p *Publisher) Targets() Targets { return p.targets }

// run is the state shared by every document of one invocation. It is
// read-only once prepare returns.
type run struct {
	id       string
	mode     Mode
	target   Target
	global   content.GlobalConfig
	nav      []navtree.Node
	resolver *render.Resolver
	composer *render.Composer
	dequeue  bool
	logger   *slog.Logger
}

// prepare resolves the target, loads settings, every layout and fragment
// definition, and the navigation snapshot. Any failure here is fatal to the
// request.
func (p *Publisher) prepare(ctx context.Context, env string, mode Mode, global *content.GlobalConfig) (*run, error) {
	target, err := p.targets.Resolve(env)
	if err != nil {
		return nil, err
	}
	r := &run{id: uuid.NewString(), mode: mode, target: target}
	r.logger = p.logger.With(logfields.RunID(r.id), logfields.Mode(string(mode)), logfields.Target(env))

	var settings content.GlobalConfig
	if global != nil {
		settings = global.Clone()
	} else if settings, err = LoadGlobalConfig(ctx, p.repo, p.configID); err != nil {
		return nil, err
	}
	r.global = settings.WithDefaults(target.SiteURL, target.CDNBaseURL)

	layouts, err := p.repo.QueryByType(ctx, content.TypeLayout)
	if err != nil {
		return nil, derrors.StoreError("load layouts").WithCause(err).Fatal().Build()
	}
	fragments, err := p.repo.QueryByType(ctx, content.TypeFragment)
	if err != nil {
		return nil, derrors.StoreError("load fragment definitions").WithCause(err).Fatal().Build()
	}
	blocks, err := p.repo.QueryByType(ctx, content.TypeBlock)
	if err != nil {
		return nil, derrors.StoreError("load blocks").WithCause(err).Fatal().Build()
	}

	r.resolver = &render.Resolver{
		Layouts:           render.NewTable(layouts, p.templates),
		FallbackToDefault: mode != ModeSingle,
		Now:               p.now,
		Logger:            r.logger,
	}
	r.composer = render.NewComposer(render.NewTable(append(fragments, blocks...), p.templates), r.logger)

	if r.global.Navigation {
		r.nav, err = p.navigation(ctx)
		if err != nil {
			return nil, err
		}
	}

	r.logger.Debug("Publish run prepared",
		slog.Int("layouts", len(layouts)),
		slog.Int("fragments", len(fragments)+len(blocks)),
		slog.Bool("navigation", r.global.Navigation))
	return r, nil
}

// navigation builds the tree from a snapshot of all listnav pages.
func (p *Publisher) navigation(ctx context.Context) ([]navtree.Node, error) {
	pages, err := p.repo.QueryByType(ctx, content.TypePage,
		"path", "navlabel", "navsort", "updatedAt", "description", "listnav")
	if err != nil {
		return nil, derrors.StoreError("load navigation pages").WithCause(err).Fatal().Build()
	}
	listed := pages[:0]
	for _, pg := range pages {
		if pg.ListNav {
			listed = append(listed, pg)
		}
	}
	return navtree.BuildFromDocuments(listed), nil
}
