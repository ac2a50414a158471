package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docgraph/internal/build"
	"git.home.luguber.info/inful/docgraph/internal/config"
	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/scheduler"
	"git.home.luguber.info/inful/docgraph/internal/server/handlers"
	"git.home.luguber.info/inful/docgraph/internal/server/httpserver"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Address    string `short:"a" help:"Listen address (overrides server.address)"`
	NoGenerate bool   `name:"no-generate" help:"Serve the stored graph without regenerating at startup"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Address != "" {
		cfg.Server.Address = s.Address
	}
	return RunServe(ctx, cfg, !s.NoGenerate)
}

// RunServe serves the graph until ctx is canceled.
func RunServe(ctx context.Context, cfg *config.Config, generate bool) error {
	var reg *prometheus.Registry
	metricsPath := ""
	if cfg.Monitoring.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metricsPath = cfg.Monitoring.Metrics.Path
	}

	p, err := newPipeline(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer p.Close()

	state := httpserver.NewGraphState()
	state.Load(func() (*graph.Graph, error) { return p.store.Load(ctx) })

	var history handlers.RunHistory
	if p.history != nil {
		history = p.history.Projection()
	}
	srv := httpserver.New(state, httpserver.Options{
		Address:     cfg.Server.Address,
		MetricsPath: metricsPath,
		Registry:    reg,
		History:     history,
	})

	// Runs share one store and history, so they never overlap.
	var mu sync.Mutex
	regenerate := func(trigger string) scheduler.Task {
		return func(ctx context.Context) {
			mu.Lock()
			defer mu.Unlock()
			res, err := p.service.Run(ctx, build.Request{Trigger: trigger, SkipIfUnchanged: true})
			if err != nil {
				// Keep serving the previous graph.
				return
			}
			state.Set(res.Graph, "")
		}
	}

	sched, err := scheduler.NewScheduler()
	if err != nil {
		return err
	}
	if err := scheduleRefresh(sched, cfg, regenerate(build.TriggerSchedule)); err != nil {
		_ = sched.Stop(ctx)
		return err
	}
	if err := srv.Start(ctx); err != nil {
		_ = sched.Stop(ctx)
		return fmt.Errorf("start server: %w", err)
	}
	sched.Start(ctx)

	var startup sync.WaitGroup
	if generate {
		startup.Add(1)
		go func() {
			defer startup.Done()
			regenerate(build.TriggerStartup)(ctx)
		}()
	}

	slog.Info("Serving content graph", slog.String("address", srv.Addr()),
		slog.String("refresh", cfg.Server.Refresh), slog.String("refresh_cron", cfg.Server.RefreshCron))
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping server...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := sched.Stop(stopCtx); err != nil {
		slog.Warn("Failed to stop scheduler", logfields.Error(err))
	}
	startup.Wait()
	return srv.Stop(stopCtx)
}

func scheduleRefresh(sched *scheduler.Scheduler, cfg *config.Config, task scheduler.Task) error {
	if d := cfg.RefreshInterval(); d > 0 {
		if _, err := sched.ScheduleEvery("refresh", d, task); err != nil {
			return err
		}
	}
	if expr := cfg.Server.RefreshCron; expr != "" {
		if _, err := sched.ScheduleCron("refresh-cron", expr, task); err != nil {
			return err
		}
	}
	return nil
}
