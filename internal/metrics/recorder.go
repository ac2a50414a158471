package metrics

import "time"

// OutcomeLabel enumerates generation run outcomes.
type OutcomeLabel string

const (
	// OutcomeSuccess means every discovered file made it into the graph.
	OutcomeSuccess OutcomeLabel = "success"
	// OutcomePartial means some files were skipped.
	OutcomePartial   OutcomeLabel = "partial"
	OutcomeFailed    OutcomeLabel = "failed"
	OutcomeCanceled  OutcomeLabel = "canceled"
	OutcomeUnchanged OutcomeLabel = "unchanged"
)

// Stage names used with ObserveStageDuration.
const (
	StageDiscover   = "discover"
	StageRead       = "read"
	StageStructural = "structural"
	StageReferences = "references"
	StagePersist    = "persist"
	StagePublish    = "publish"
)

// Recorder receives generation metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveGenerationDuration(d time.Duration)
	IncGenerationOutcome(outcome OutcomeLabel)
	SetGraphSize(nodes, links int)
	AddSkippedFiles(n int)
	AddUnresolvedLinks(n int)
	IncPublishResult(success bool)
}

// NoopRecorder is the default Recorder.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveGenerationDuration(time.Duration)    {}
func (NoopRecorder) IncGenerationOutcome(OutcomeLabel)          {}
func (NoopRecorder) SetGraphSize(int, int)                      {}
func (NoopRecorder) AddSkippedFiles(int)                        {}
func (NoopRecorder) AddUnresolvedLinks(int)                     {}
func (NoopRecorder) IncPublishResult(bool)                      {}
