package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docgraph/internal/discovery"
	"git.home.luguber.info/inful/docgraph/internal/eventstore"
	derrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
	"git.home.luguber.info/inful/docgraph/internal/publish"
	"git.home.luguber.info/inful/docgraph/internal/storage"
)

// Outputs is implemented by stores that can name their locations.
type Outputs interface {
	Paths() []string
}

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	opts      graph.Options
	store     storage.GraphStore
	history   *eventstore.History
	publisher publish.Publisher
	recorder  metrics.Recorder
	revision  func(siteDir string) (string, error)
	now       func() time.Time
	newRunID  func() string
}

// NewService creates a service generating graphs for opts into store.
func NewService(opts graph.Options, store storage.GraphStore) *DefaultService {
	return &DefaultService{
		opts:     opts,
		store:    store,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// WithHistory records every run in h.
func (s *DefaultService) WithHistory(h *eventstore.History) *DefaultService {
	s.history = h
	return s
}

// WithPublisher publishes every persisted graph through p.
func (s *DefaultService) WithPublisher(p publish.Publisher) *DefaultService {
	s.publisher = p
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithRevision sets the source revision resolver passed to the generator.
func (s *DefaultService) WithRevision(fn func(siteDir string) (string, error)) *DefaultService {
	s.revision = fn
	return s
}

// WithClock overrides the timestamp source.
func (s *DefaultService) WithClock(now func() time.Time) *DefaultService {
	s.now = now
	return s
}

// WithRunIDs overrides run id generation.
func (s *DefaultService) WithRunIDs(fn func() string) *DefaultService {
	s.newRunID = fn
	return s
}

// Run executes one generation.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{RunID: s.newRunID(), StartTime: s.now()}
	log := slog.With(logfields.RunID(res.RunID))
	log.Info("Starting graph generation", logfields.Path(s.opts.SiteDir), slog.String("trigger", req.Trigger))

	started, err := eventstore.NewGenerationStarted(res.RunID, eventstore.GenerationStartedData{
		SiteDir: s.opts.SiteDir,
		Trigger: req.Trigger,
	})
	s.record(ctx, started, err)

	genOpts := []graph.GeneratorOption{graph.WithRecorder(s.recorder), graph.WithClock(s.now)}
	if s.revision != nil {
		genOpts = append(genOpts, graph.WithRevision(s.revision))
	}
	g, report, err := graph.NewGenerator(s.opts, genOpts...).Generate(ctx)
	if err != nil {
		return s.fail(ctx, res, "generate", fmt.Errorf("%w: %w", ErrGenerate, err))
	}
	res.Graph = g
	res.Report = report

	for _, sk := range report.Skipped {
		data := eventstore.FileSkippedData{File: sk.ID, Reason: sk.Reason}
		if sk.Err != nil {
			data.Error = sk.Err.Error()
		}
		skipped, err := eventstore.NewFileSkipped(res.RunID, data)
		s.record(ctx, skipped, err)
	}

	if req.SkipIfUnchanged {
		if reason, ok := s.unchanged(ctx, g); ok {
			res.Status = StatusUnchanged
			res.SkipReason = reason
			res.Outputs = s.outputs()
			return s.complete(ctx, res, true), nil
		}
	}

	if req.DryRun {
		log.Info("Dry run; graph not persisted")
	} else {
		stage := time.Now()
		err := s.store.Save(ctx, g)
		s.recorder.ObserveStageDuration(metrics.StagePersist, time.Since(stage))
		if err != nil {
			return s.fail(ctx, res, "persist", fmt.Errorf("%w: %w", ErrPersist, err))
		}
		res.Outputs = s.outputs()
		if s.publisher != nil {
			res.Published = publish.BestEffort(ctx, s.publisher, res.RunID, g, s.recorder)
		}
	}

	res.Status = StatusSuccess
	if len(report.Failed()) > 0 {
		res.Status = StatusPartial
	}
	return s.complete(ctx, res, false), nil
}

// unchanged reports whether the last completed run produced the same corpus
// fingerprint and its outputs are all still present.
func (s *DefaultService) unchanged(ctx context.Context, g *graph.Graph) (string, bool) {
	if s.history == nil {
		return "", false
	}
	last, ok := s.history.Projection().LatestCompleted()
	if !ok || last.Fingerprint == "" || last.Fingerprint != g.Metadata.SourceFingerprint {
		return "", false
	}
	exists, err := s.store.Exists(ctx)
	if err != nil || !exists {
		return "", false
	}
	return "source fingerprint matches run " + last.RunID, true
}

func (s *DefaultService) outputs() []string {
	if o, ok := s.store.(Outputs); ok {
		return o.Paths()
	}
	return nil
}

func (s *DefaultService) complete(ctx context.Context, res *Result, unchanged bool) *Result {
	res.EndTime = s.now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	g := res.Graph

	completed, err := eventstore.NewGenerationCompleted(res.RunID, eventstore.GenerationCompletedData{
		Nodes:       g.Metadata.TotalNodes,
		Links:       g.Metadata.TotalLinks,
		Skipped:     len(res.Report.Skipped),
		Unresolved:  len(res.Report.Unresolved),
		Fingerprint: g.Metadata.SourceFingerprint,
		Revision:    g.Metadata.SourceRevision,
		Outputs:     res.Outputs,
		Unchanged:   unchanged,
		DurationMS:  res.Duration.Milliseconds(),
	})
	s.record(ctx, completed, err)

	outcome := metrics.OutcomeSuccess
	switch res.Status {
	case StatusPartial:
		outcome = metrics.OutcomePartial
	case StatusUnchanged:
		outcome = metrics.OutcomeUnchanged
	}
	s.recorder.IncGenerationOutcome(outcome)
	s.recorder.ObserveGenerationDuration(res.Duration)

	slog.Info("Graph generation finished",
		logfields.RunID(res.RunID),
		slog.String("status", string(res.Status)),
		logfields.Nodes(g.Metadata.TotalNodes),
		logfields.Links(g.Metadata.TotalLinks),
		logfields.Skipped(len(res.Report.Skipped)),
		logfields.Unresolved(len(res.Report.Unresolved)),
		logfields.Fingerprint(g.Metadata.SourceFingerprint),
		logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return res
}

func (s *DefaultService) fail(ctx context.Context, res *Result, stage string, err error) (*Result, error) {
	res.EndTime = s.now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	res.Status = StatusFailed
	outcome := metrics.OutcomeFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		res.Status = StatusCanceled
		outcome = metrics.OutcomeCanceled
	}

	// The run context may be the reason for failing; history still needs the fact.
	failed, ferr := eventstore.NewGenerationFailed(res.RunID, eventstore.GenerationFailedData{
		Stage: stage,
		Error: err.Error(),
	})
	s.record(context.WithoutCancel(ctx), failed, ferr)
	s.recorder.IncGenerationOutcome(outcome)
	s.recorder.ObserveGenerationDuration(res.Duration)

	slog.Error("Graph generation failed", logfields.RunID(res.RunID), logfields.Stage(stage), logfields.Error(err))
	return res, classify(stage, err)
}

// record appends an event to history when enabled. History failures are
// logged by History.Record and never fail the run.
func (s *DefaultService) record(ctx context.Context, e eventstore.Event, err error) {
	if s.history == nil {
		return
	}
	if err != nil {
		slog.Warn("Failed to build history event", logfields.Error(err))
		return
	}
	_ = s.history.Record(ctx, e)
}

func classify(stage string, err error) error {
	if _, ok := derrors.AsClassified(err); ok {
		return err
	}
	category := derrors.CategoryGraph
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		category = derrors.CategoryRuntime
	case errors.Is(err, discovery.ErrSiteDirNotFound):
		category = derrors.CategoryNotFound
	case errors.Is(err, discovery.ErrInvalidPattern):
		category = derrors.CategoryConfig
	case errors.Is(err, discovery.ErrRootWalkFailed):
		category = derrors.CategoryDiscovery
	case stage == "persist":
		category = derrors.CategoryFileSystem
	}
	return derrors.WrapError(err, category, stage+" failed").
		WithContext("stage", stage).
		Build()
}
