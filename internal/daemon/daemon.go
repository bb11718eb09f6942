package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/metrics"
	"git.home.luguber.info/inful/pagepublisher/internal/scheduler"
	"git.home.luguber.info/inful/pagepublisher/internal/server/handlers"
	"git.home.luguber.info/inful/pagepublisher/internal/server/httpserver"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

const shutdownTimeout = 15 * time.Second

// Daemon runs the HTTP API, the queue scheduler and the template watcher
// over one set of Components.
type Daemon struct {
	components *Components
	server     *httpserver.Server
	scheduler  *scheduler.Scheduler
	watcher    *TemplateWatcher
	logger     *slog.Logger
}

// New wires the long-running services. The components stay owned by the
// caller.
func New(c *Components, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := c.Config
	d := &Daemon{components: c, logger: logger}

	targets := make([]string, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		targets = append(targets, t.Name)
	}
	probe := func(ctx context.Context) error {
		_, err := c.Repo.Get(ctx, cfg.Store.ConfigDocument)
		if err != nil && !store.IsNotFound(err) {
			return err
		}
		return nil
	}
	opts := httpserver.Options{Addr: cfg.Daemon.HTTP.Addr, Logger: logger}
	if c.Registry != nil {
		opts.Metrics = metrics.HTTPHandler(c.Registry)
		opts.MetricsPath = cfg.Monitoring.Metrics.Path
	}
	d.server = httpserver.New(
		handlers.NewPublishHandlers(c.Publisher, c.Feeds, c.FeedSpecs(), logger),
		handlers.NewMonitoringHandlers(targets, probe, logger),
		opts,
	)

	if cfg.Publish.QueueSchedule != "" {
		s, err := scheduler.New(logger)
		if err != nil {
			return nil, err
		}
		d.scheduler = s
	}

	if c.Templates != nil {
		w, err := NewTemplateWatcher(c.Templates.Dir(), c.Templates, logger)
		if err != nil {
			return nil, err
		}
		d.watcher = w
	}
	return d, nil
}

// Run starts every service and blocks until ctx is cancelled, then shuts
// them down in reverse order.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.components.Config
	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			return err
		}
	}
	if d.scheduler != nil {
		qp := &scheduler.QueuePublisher{
			Publisher: d.components.Publisher,
			Target:    cfg.Publish.QueueTarget,
			Logger:    d.logger,
		}
		if _, err := d.scheduler.ScheduleCron("queue-publish", cfg.Publish.QueueSchedule, qp.Task(ctx)); err != nil {
			d.stopWatcher()
			return err
		}
		d.scheduler.Start(ctx)
	}
	if err := d.server.Start(ctx); err != nil {
		d.stopScheduler()
		d.stopWatcher()
		return err
	}
	d.logger.Info("Daemon running", slog.String("addr", cfg.Daemon.HTTP.Addr))

	<-ctx.Done()
	d.logger.Info("Daemon shutting down")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	var errs []error
	if err := d.server.Stop(stopCtx); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, d.stopScheduler(), d.stopWatcher())
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown errors: %w", err)
	}
	return nil
}

func (d *Daemon) stopScheduler() error {
	if d.scheduler == nil {
		return nil
	}
	return d.scheduler.Stop(context.Background())
}

func (d *Daemon) stopWatcher() error {
	if d.watcher == nil {
		return nil
	}
	return d.watcher.Stop()
}
