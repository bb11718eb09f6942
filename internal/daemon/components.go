// Package daemon assembles the publishing stack from configuration and
// runs it as a long-lived process: HTTP API, scheduled queue publishing
// and template hot reload.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagepublisher/internal/blob"
	"git.home.luguber.info/inful/pagepublisher/internal/config"
	"git.home.luguber.info/inful/pagepublisher/internal/feeds"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/metrics"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
	"git.home.luguber.info/inful/pagepublisher/internal/queue"
	"git.home.luguber.info/inful/pagepublisher/internal/render"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

// Components is the wired publishing stack shared by the CLI commands and
// the daemon.
type Components struct {
	Config    *config.Config
	Repo      store.Repository
	Blobs     blob.Store
	Queue     queue.Enqueuer
	Templates *render.FileTemplates
	Publisher *publish.Publisher
	Feeds     *feeds.Generator
	Registry  *prometheus.Registry
	Recorder  metrics.Recorder
}

// OpenComponents opens the store, blob store and (when enabled) the NATS
// queue, and builds the publisher and feed generator on top of them.
func OpenComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Components{Config: cfg, Recorder: metrics.NoopRecorder{}}
	if cfg.Monitoring.Metrics.Enabled {
		c.Registry = prometheus.NewRegistry()
		c.Recorder = metrics.NewPrometheusRecorder(c.Registry)
	}

	repo, err := store.Open(ctx, cfg.Store.Path, store.Options{
		CreateTypeIndex: cfg.Store.CreateTypeIndex(),
		PageSize:        cfg.Store.ScanPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	c.Repo = repo

	blobs, err := blob.NewFSStore(cfg.Blob.BaseDir)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	c.Blobs = blobs

	pubOpts := []publish.Option{
		publish.WithWorkers(cfg.Publish.Workers),
		publish.WithRecorder(c.Recorder),
		publish.WithLogger(logger),
		publish.WithConfigDocument(cfg.Store.ConfigDocument),
	}
	if cfg.Publish.TemplatesDir != "" {
		c.Templates = render.NewFileTemplates(cfg.Publish.TemplatesDir)
		pubOpts = append(pubOpts, publish.WithTemplateSource(c.Templates))
	}
	if cfg.Search.Enabled {
		q, err := queue.NewNATSQueue(ctx, queue.NATSConfig{
			URL:     cfg.Search.NATSURL,
			Stream:  cfg.Search.Stream,
			Subject: cfg.Search.Subject,
		})
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("connect search queue: %w", err)
		}
		c.Queue = q
		pubOpts = append(pubOpts, publish.WithQueue(q, cfg.Search.Subject))
		logger.Info("Search indexing enabled", logfields.Subject(cfg.Search.Subject))
	}

	targets := publish.TargetsFromConfig(cfg.Targets)
	c.Publisher = publish.New(repo, blobs, targets, pubOpts...)
	c.Feeds = feeds.NewGenerator(repo, blobs, targets,
		feeds.WithRecorder(c.Recorder),
		feeds.WithLogger(logger),
		feeds.WithConfigDocument(cfg.Store.ConfigDocument))
	return c, nil
}

// FeedSpecs returns the configured feeds.
func (c *Components) FeedSpecs() []feeds.Spec {
	return feeds.SpecsFromConfig(c.Config.Feeds)
}

// Close releases the queue connection and the store.
func (c *Components) Close() error {
	var errs []error
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close queue: %w", err))
		}
	}
	if c.Repo != nil {
		if err := c.Repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
