package metrics

import (
	"sync"
	"testing"
	"time"
)

// countingRecorder records call counts; it doubles as a compile-time check
// that the interface stays implementable outside the two shipped recorders.
type countingRecorder struct {
	mu       sync.Mutex
	stages   map[string]int
	outcomes map[OutcomeLabel]int
}

func (c *countingRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages[stage]++
}
func (c *countingRecorder) ObserveGenerationDuration(time.Duration) {}
func (c *countingRecorder) IncGenerationOutcome(o OutcomeLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[o]++
}
func (c *countingRecorder) SetGraphSize(int, int)  {}
func (c *countingRecorder) AddSkippedFiles(int)    {}
func (c *countingRecorder) AddUnresolvedLinks(int) {}
func (c *countingRecorder) IncPublishResult(bool)  {}

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = (*countingRecorder)(nil)
)

func TestNoopRecorderDoesNothing(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration(StageDiscover, time.Second)
	r.IncGenerationOutcome(OutcomeFailed)
	r.SetGraphSize(1, 1)
}

func TestCountingRecorder(t *testing.T) {
	c := &countingRecorder{stages: map[string]int{}, outcomes: map[OutcomeLabel]int{}}
	var r Recorder = c
	r.ObserveStageDuration(StageRead, time.Millisecond)
	r.ObserveStageDuration(StageRead, time.Millisecond)
	r.IncGenerationOutcome(OutcomePartial)
	if c.stages[StageRead] != 2 || c.outcomes[OutcomePartial] != 1 {
		t.Fatalf("unexpected counts: %+v %+v", c.stages, c.outcomes)
	}
}
