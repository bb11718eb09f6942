package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pagepublisher/internal/daemon"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

// DaemonCmd implements 'daemon'.
type DaemonCmd struct {
	Addr string `help:"Override the HTTP listen address"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	comps, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = comps.Close() }()
	if d.Addr != "" {
		comps.Config.Daemon.HTTP.Addr = d.Addr
	}

	dm, err := daemon.New(comps, g.Logger)
	if err != nil {
		return runtimeFailure(err, "failed to create daemon")
	}
	slog.Info("Starting daemon", slog.String("config", root.Config))
	if err := dm.Run(ctx); err != nil {
		return runtimeFailure(err, "daemon stopped with error")
	}
	slog.Info("Daemon stopped successfully")
	return nil
}

// runtimeFailure keeps an existing classification and marks anything else as
// a runtime failure so the exit code reflects it.
func runtimeFailure(err error, msg string) error {
	if _, ok := derrors.AsClassified(err); ok {
		return err
	}
	return derrors.WrapError(err, derrors.CategoryRuntime, msg).Fatal().Build()
}
