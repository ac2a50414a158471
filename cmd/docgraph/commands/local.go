package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/storage"
)

// LocalCmd prints the neighbourhood of one page from the stored graph.
type LocalCmd struct {
	Path   string `short:"p" required:"" help:"URL path or node id of the current page"`
	Pretty bool   `help:"Indent the JSON output" default:"true" negatable:""`
}

func (l *LocalCmd) Run(global *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.NewFileStore(cfg.Output.Paths[:1], cfg.Output.Pretty)
	if err != nil {
		return err
	}

	g, notice := graph.LoadOrEmpty(func() (*graph.Graph, error) {
		return store.Load(context.Background())
	})
	if notice != "" {
		slog.Warn(notice)
	}
	if err := graph.Encode(global.out(), graph.Local(g, l.Path), l.Pretty); err != nil {
		return fmt.Errorf("write local graph: %w", err)
	}
	return nil
}
