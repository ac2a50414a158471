// Package eventstore records the history of generation runs as events in
// SQLite and projects them into run summaries.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusUnchanged = "unchanged"
	StatusFailed    = "failed"
)

// RunSummary is the read model of one generation run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Status       string        `json:"status"`
	Trigger      string        `json:"trigger,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Nodes        int           `json:"nodes"`
	Links        int           `json:"links"`
	Unresolved   int           `json:"unresolved"`
	SkippedFiles []string      `json:"skipped_files,omitempty"`
	Fingerprint  string        `json:"fingerprint,omitempty"`
	Revision     string        `json:"revision,omitempty"`
	ErrorStage   string        `json:"error_stage,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Finished reports whether the run ended, successfully or not.
func (r *RunSummary) Finished() bool {
	return r.Status != StatusRunning
}

// HistoryProjection keeps an in-memory, size-bounded view of run history.
type HistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	runs    map[string]*RunSummary
	order   []string
	maxSize int
}

// NewHistoryProjection creates a projection backed by store.
func NewHistoryProjection(store Store, maxSize int) *HistoryProjection {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &HistoryProjection{
		store:   store,
		runs:    make(map[string]*RunSummary),
		maxSize: maxSize,
	}
}

// Rebuild reconstructs the projection from every stored event.
func (p *HistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.UnixMilli(0), time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = make(map[string]*RunSummary)
	p.order = nil
	for _, e := range events {
		p.applyLocked(e)
	}
	return nil
}

// Apply folds a single event into the projection.
func (p *HistoryProjection) Apply(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(e)
}

func (p *HistoryProjection) applyLocked(e Event) {
	runID := e.RunID()
	if runID == "" {
		return
	}

	run, ok := p.runs[runID]
	if !ok {
		run = &RunSummary{RunID: runID, Status: StatusRunning, StartedAt: e.Timestamp()}
		p.runs[runID] = run
		p.order = append(p.order, runID)
	}

	switch e.Type() {
	case TypeGenerationStarted:
		var data GenerationStartedData
		if err := json.Unmarshal(e.Payload(), &data); err == nil {
			run.Trigger = data.Trigger
		}
		run.StartedAt = e.Timestamp()

	case TypeFileSkipped:
		var data FileSkippedData
		if err := json.Unmarshal(e.Payload(), &data); err == nil && data.File != "" {
			run.SkippedFiles = append(run.SkippedFiles, data.File)
		}

	case TypeGenerationCompleted:
		var data GenerationCompletedData
		if err := json.Unmarshal(e.Payload(), &data); err == nil {
			run.Nodes = data.Nodes
			run.Links = data.Links
			run.Unresolved = data.Unresolved
			run.Fingerprint = data.Fingerprint
			run.Revision = data.Revision
		}
		run.Status = StatusCompleted
		if data.Unchanged {
			run.Status = StatusUnchanged
		}
		p.finishLocked(run, e.Timestamp())

	case TypeGenerationFailed:
		var data GenerationFailedData
		if err := json.Unmarshal(e.Payload(), &data); err == nil {
			run.ErrorStage = data.Stage
			run.ErrorMessage = data.Error
		}
		run.Status = StatusFailed
		p.finishLocked(run, e.Timestamp())
	}
}

func (p *HistoryProjection) finishLocked(run *RunSummary, at time.Time) {
	run.CompletedAt = &at
	run.Duration = at.Sub(run.StartedAt)
	p.pruneLocked()
}

// pruneLocked drops the oldest finished runs beyond maxSize. Running runs are
// always kept.
func (p *HistoryProjection) pruneLocked() {
	finished := 0
	for _, id := range p.order {
		if p.runs[id].Finished() {
			finished++
		}
	}
	if finished <= p.maxSize {
		return
	}
	drop := finished - p.maxSize
	kept := p.order[:0]
	for _, id := range p.order {
		if drop > 0 && p.runs[id].Finished() {
			delete(p.runs, id)
			drop--
			continue
		}
		kept = append(kept, id)
	}
	p.order = kept
}

// Recent returns up to n runs, newest first. n <= 0 returns all.
func (p *HistoryProjection) Recent(n int) []RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]RunSummary, 0, len(p.order))
	for i := len(p.order) - 1; i >= 0; i-- {
		out = append(out, copyRun(p.runs[p.order[i]]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Run returns the summary of one run.
func (p *HistoryProjection) Run(runID string) (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	run, ok := p.runs[runID]
	if !ok {
		return RunSummary{}, false
	}
	return copyRun(run), true
}

// LatestCompleted returns the newest run that produced a graph, whether it
// rewrote the outputs or found them unchanged.
func (p *HistoryProjection) LatestCompleted() (RunSummary, bool) {
	for _, run := range p.Recent(0) {
		if run.Status == StatusCompleted || run.Status == StatusUnchanged {
			return run, true
		}
	}
	return RunSummary{}, false
}

func copyRun(r *RunSummary) RunSummary {
	cp := *r
	if r.SkippedFiles != nil {
		cp.SkippedFiles = append([]string(nil), r.SkippedFiles...)
	}
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		cp.CompletedAt = &at
	}
	return cp
}
