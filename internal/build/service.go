package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docgraph/internal/graph"
)

// Service runs one complete generation: discover, build, persist, publish.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Trigger names recorded in run history.
const (
	TriggerCLI      = "cli"
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
)

// Request holds the per-run inputs.
type Request struct {
	// Trigger records what started the run.
	Trigger string

	// SkipIfUnchanged leaves outputs untouched when the corpus fingerprint
	// equals that of the last completed run and every output still exists.
	SkipIfUnchanged bool

	// DryRun generates the graph without persisting or publishing it.
	DryRun bool
}

// Status is the outcome of a run.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusPartial   Status = "partial"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsSuccess reports whether the run left a usable graph behind.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusPartial || s == StatusUnchanged
}

// Result describes a finished run.
type Result struct {
	RunID     string
	Status    Status
	Graph     *graph.Graph
	Report    *graph.Report
	Outputs   []string
	Published bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// SkipReason explains a StatusUnchanged result.
	SkipReason string
}
