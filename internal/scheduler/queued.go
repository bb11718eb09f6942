package scheduler

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagepublisher/internal/content"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
	"git.home.luguber.info/inful/pagepublisher/internal/publish"
	"git.home.luguber.info/inful/pagepublisher/internal/store"
)

// QueuePublisher publishes every page whose queued flag is set, clearing
// the flag as each one goes live.
type QueuePublisher struct {
	Publisher *publish.Publisher
	Target    string
	// Timeout bounds one run. Zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

// RunOnce performs one queue drain.
func (q *QueuePublisher) RunOnce(ctx context.Context) *publish.Result {
	logger := q.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if q.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Timeout)
		defer cancel()
	}

	queued, err := store.Filter(ctx, q.Publisher.Repository(), content.TypePage,
		func(d *content.Document) bool { return d.Queued }, "queued")
	if err != nil {
		res := &publish.Result{}
		return res.Fail(derrors.StoreError("list queued pages").WithCause(err).Fatal().Build())
	}
	if len(queued) == 0 {
		logger.Debug("No queued pages", logfields.Target(q.Target))
		return &publish.Result{Success: true, Log: []string{"no queued pages"}}
	}

	ids := make([]string, len(queued))
	for i, d := range queued {
		ids[i] = d.ID
	}
	logger.Info("Publishing queued pages", logfields.Target(q.Target), logfields.Count(len(ids)))
	return q.Publisher.BulkPublish(ctx, q.Target, publish.BulkRequest{
		Selection: publish.SelectSelected,
		IDs:       ids,
		Dequeue:   true,
	}, nil)
}

// Task adapts RunOnce for the scheduler. Results are only logged.
func (q *QueuePublisher) Task(ctx context.Context) func() {
	return func() {
		res := q.RunOnce(ctx)
		logger := q.Logger
		if logger == nil {
			logger = slog.Default()
		}
		switch {
		case res.Err != nil:
			logger.Error("Scheduled queue publish failed", logfields.Target(q.Target), logfields.Error(res.Err))
		case !res.Success:
			logger.Warn("Scheduled queue publish completed with failures", logfields.Target(q.Target), logfields.Count(len(res.Log)))
		}
	}
}
