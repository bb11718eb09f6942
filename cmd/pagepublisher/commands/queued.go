package commands

import (
	"context"

	"git.home.luguber.info/inful/pagepublisher/internal/publish"
	"git.home.luguber.info/inful/pagepublisher/internal/scheduler"
)

// queuedRun drains the publish queue once, the same work the daemon does
// on its schedule.
func queuedRun(ctx context.Context, pub *publish.Publisher, env string, g *Global) *publish.Result {
	qp := &scheduler.QueuePublisher{Publisher: pub, Target: env, Logger: g.Logger}
	return qp.RunOnce(ctx)
}
