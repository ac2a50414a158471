package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docgraph/internal/build"
)

// GenerateCmd implements the 'generate' command for CI/CD pipelines.
type GenerateCmd struct {
	SkipIfUnchanged bool `name:"skip-if-unchanged" help:"Skip writing when content is unchanged since the last successful run (requires history)"`
	DryRun          bool `name:"dry-run" help:"Generate and report without writing or publishing"`
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.service.Run(ctx, build.Request{
		Trigger:         build.TriggerCLI,
		SkipIfUnchanged: g.SkipIfUnchanged,
		DryRun:          g.DryRun,
	})
	if err != nil {
		return err
	}
	printResult(global, res)
	return nil
}

func printResult(global *Global, res *build.Result) {
	out := global.out()
	md := res.Graph.Metadata
	fmt.Fprintf(out, "run %s: %s (%d nodes, %d links) in %s\n",
		res.RunID, res.Status, md.TotalNodes, md.TotalLinks, res.Duration.Round(time.Millisecond))
	if res.SkipReason != "" {
		fmt.Fprintf(out, "  unchanged: %s\n", res.SkipReason)
	}
	for _, sk := range res.Report.Failed() {
		fmt.Fprintf(out, "  skipped %s (%s)\n", sk.ID, sk.Reason)
	}
	if n := len(res.Report.Unresolved); n > 0 {
		fmt.Fprintf(out, "  %d unresolved links (use -v to list them)\n", n)
	}
	for _, path := range res.Outputs {
		fmt.Fprintf(out, "  wrote %s\n", path)
	}
	if res.Published {
		fmt.Fprintln(out, "  published")
	}
}
