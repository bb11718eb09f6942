package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagepublisher/internal/config"
	"git.home.luguber.info/inful/pagepublisher/internal/content"
	"git.home.luguber.info/inful/pagepublisher/internal/daemon"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI is the root command.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"pagepublisher.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Override log format (text or json)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Publish     PublishCmd     `cmd:"" help:"Render and upload a single page"`
	BulkPublish BulkPublishCmd `cmd:"" name:"bulk-publish" help:"Publish all pages or a selection of pages"`
	Unpublish   UnpublishCmd   `cmd:"" help:"Remove a published page"`
	Feeds       FeedsCmd       `cmd:"" help:"Generate sitemap, Atom and JSON feeds"`
	Daemon      DaemonCmd      `cmd:"" help:"Serve the HTTP API and run scheduled publishing"`
	Init        InitCmd        `cmd:"" help:"Write an example configuration file"`
	Info        VersionCmd     `cmd:"" name:"version" help:"Print build information"`
}

// AfterApply installs a logger from the command-line flags. Commands that
// load a configuration refine it with configureLogging.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = newLogger(config.NormalizeLogFormat(c.LogFormat), level)
	slog.SetDefault(g.Logger)
	return nil
}

func newLogger(format config.LogFormat, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// configureLogging applies the configured level and format. --verbose and
// --log-format still win.
func (c *CLI) configureLogging(g *Global, cfg *config.Config) {
	level := cfg.Monitoring.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	format := cfg.Monitoring.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	g.Logger = newLogger(format, level)
	slog.SetDefault(g.Logger)
}

// open loads the configuration and wires the publishing stack.
func (c *CLI) open(ctx context.Context, g *Global) (*daemon.Components, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "load configuration").Build()
	}
	c.configureLogging(g, cfg)
	comps, err := daemon.OpenComponents(ctx, cfg, g.Logger)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "initialize publisher").Build()
	}
	return comps, nil
}

// readGlobal loads an optional settings override from a JSON file.
func readGlobal(path string) (*content.GlobalConfig, error) {
	if path == "" {
		return nil, nil
	}
	// #nosec G304 - operator supplied path
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "read global settings").WithContext("path", path).Build()
	}
	var g content.GlobalConfig
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "parse global settings").WithContext("path", path).Build()
	}
	return &g, nil
}

// printResult writes the result as indented JSON.
func printResult(g *Global, v any) error {
	out := g.Out
	if out == nil {
		out = os.Stdout
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// outcome turns a finished run into the process error: the abort error
// when there is one, otherwise a publish error when items failed.
func outcome(runErr error, success bool) error {
	if runErr != nil {
		return runErr
	}
	if !success {
		return derrors.PublishError("publish completed with failures").Build()
	}
	return nil
}
