package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	derrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
)

// HistoryCmd lists recent runs from the history database.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of runs to show" default:"10"`
	JSON  bool `name:"json" help:"Print runs as JSON"`
}

func (h *HistoryCmd) Run(global *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return derrors.ConfigError("history is disabled").
			WithContext("hint", "set history.enabled: true in "+root.Config).
			Build()
	}

	history, err := openHistory(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	runs := history.Projection().Recent(h.Limit)
	if h.JSON {
		enc := json.NewEncoder(global.out())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	tw := tabwriter.NewWriter(global.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTATUS\tTRIGGER\tSTARTED\tDURATION\tNODES\tLINKS\tSKIPPED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.RunID, r.Status, r.Trigger,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration.Round(time.Millisecond),
			r.Nodes, r.Links, len(r.SkippedFiles))
	}
	return tw.Flush()
}
