package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/docgraph/internal/foundation/errors"
)

// Event type names as stored in the events table.
const (
	TypeGenerationStarted   = "GenerationStarted"
	TypeFileSkipped         = "FileSkipped"
	TypeGenerationCompleted = "GenerationCompleted"
	TypeGenerationFailed    = "GenerationFailed"
)

// GenerationStartedData is the payload of a GenerationStarted event.
type GenerationStartedData struct {
	SiteDir string `json:"site_dir"`
	// Trigger is what started the run: "cli" or "schedule".
	Trigger string `json:"trigger"`
}

// GenerationStarted is emitted when a run begins.
type GenerationStarted struct {
	BaseEvent
	Data GenerationStartedData
}

func NewGenerationStarted(runID string, data GenerationStartedData) (*GenerationStarted, error) {
	base, err := newBase(runID, TypeGenerationStarted, data)
	if err != nil {
		return nil, err
	}
	return &GenerationStarted{BaseEvent: base, Data: data}, nil
}

// FileSkippedData is the payload of a FileSkipped event.
type FileSkippedData struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// FileSkipped is emitted for each content file left out of the graph.
type FileSkipped struct {
	BaseEvent
	Data FileSkippedData
}

func NewFileSkipped(runID string, data FileSkippedData) (*FileSkipped, error) {
	base, err := newBase(runID, TypeFileSkipped, data)
	if err != nil {
		return nil, err
	}
	return &FileSkipped{BaseEvent: base, Data: data}, nil
}

// GenerationCompletedData is the payload of a GenerationCompleted event.
type GenerationCompletedData struct {
	Nodes       int      `json:"nodes"`
	Links       int      `json:"links"`
	Skipped     int      `json:"skipped"`
	Unresolved  int      `json:"unresolved"`
	Fingerprint string   `json:"fingerprint"`
	Revision    string   `json:"revision,omitempty"`
	Outputs     []string `json:"outputs,omitempty"`
	// Unchanged is set when outputs were left untouched because the corpus
	// fingerprint matched the previous run.
	Unchanged  bool  `json:"unchanged,omitempty"`
	DurationMS int64 `json:"duration_ms"`
}

// GenerationCompleted is emitted when a run produced a graph.
type GenerationCompleted struct {
	BaseEvent
	Data GenerationCompletedData
}

func NewGenerationCompleted(runID string, data GenerationCompletedData) (*GenerationCompleted, error) {
	base, err := newBase(runID, TypeGenerationCompleted, data)
	if err != nil {
		return nil, err
	}
	return &GenerationCompleted{BaseEvent: base, Data: data}, nil
}

// GenerationFailedData is the payload of a GenerationFailed event.
type GenerationFailedData struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// GenerationFailed is emitted when a run produced no graph.
type GenerationFailed struct {
	BaseEvent
	Data GenerationFailedData
}

func NewGenerationFailed(runID string, data GenerationFailedData) (*GenerationFailed, error) {
	base, err := newBase(runID, TypeGenerationFailed, data)
	if err != nil {
		return nil, err
	}
	return &GenerationFailed{BaseEvent: base, Data: data}, nil
}

func newBase(runID, eventType string, data any) (BaseEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return BaseEvent{}, errors.EventStoreError("failed to marshal " + eventType + " payload").
			WithCause(err).
			WithContext("run_id", runID).
			Build()
	}
	return BaseEvent{
		EventRunID:     runID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   payload,
	}, nil
}
