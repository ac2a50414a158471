package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docgraph/internal/build"
	"git.home.luguber.info/inful/docgraph/internal/config"
	"git.home.luguber.info/inful/docgraph/internal/eventstore"
	derrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/git"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
	"git.home.luguber.info/inful/docgraph/internal/publish"
	"git.home.luguber.info/inful/docgraph/internal/storage"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Stdout receives command output; logs always go to stderr.
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docgraph.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Generate the content graph and write it to the configured outputs"`
	Local    LocalCmd    `cmd:"" help:"Print the local subgraph around one page"`
	Serve    ServeCmd    `cmd:"" help:"Serve the content graph over HTTP, regenerating it on a schedule"`
	History  HistoryCmd  `cmd:"" help:"Show recent generation runs"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration and re-applies logging from its
// logging section. -v always wins over the configured level.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return nil, err
	}
	configureLogging(cfg.Logging, c.Verbose)
	return cfg, nil
}

func configureLogging(lc config.LoggingConfig, verbose bool) {
	level := lc.Level.Slog()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if lc.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openHistory returns nil when history is disabled.
func openHistory(ctx context.Context, cfg *config.Config) (*eventstore.History, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	if cfg.History.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o750); err != nil {
			return nil, derrors.FileSystemError("failed to create history directory").
				WithCause(err).
				WithContext("path", cfg.History.Path).
				Build()
		}
	}
	return eventstore.OpenHistory(ctx, cfg.History.Path, cfg.History.MaxRuns)
}

// openPublisher returns nil when publishing is disabled or the broker is
// unreachable; publication is never required for a run to succeed.
func openPublisher(ctx context.Context, cfg *config.Config) publish.Publisher {
	if !cfg.Publish.Enabled {
		return nil
	}
	p, err := publish.NewNATSPublisher(ctx, cfg.PublishOptions())
	if err != nil {
		slog.Warn("Publishing disabled for this process", logfields.Error(err))
		return nil
	}
	return p
}

// pipeline bundles everything a generation run needs so commands can close
// it in one place.
type pipeline struct {
	service   *build.DefaultService
	store     *storage.FileStore
	history   *eventstore.History
	publisher publish.Publisher
}

func newPipeline(ctx context.Context, cfg *config.Config, reg *prometheus.Registry) (*pipeline, error) {
	store, err := storage.NewFileStore(cfg.Output.Paths, cfg.Output.Pretty)
	if err != nil {
		return nil, err
	}
	history, err := openHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if reg != nil {
		recorder = metrics.NewPrometheusRecorder(reg)
	}

	p := &pipeline{store: store, history: history, publisher: openPublisher(ctx, cfg)}
	p.service = build.NewService(cfg.GraphOptions(), store).
		WithHistory(history).
		WithPublisher(p.publisher).
		WithRecorder(recorder).
		WithRevision(git.HeadRevision)
	return p, nil
}

func (p *pipeline) Close() {
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			slog.Warn("Failed to close publisher", logfields.Error(err))
		}
	}
	if p.history != nil {
		if err := p.history.Close(); err != nil {
			slog.Warn("Failed to close history", logfields.Error(err))
		}
	}
}
