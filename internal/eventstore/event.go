package eventstore

import "time"

// Event is one fact recorded about a generation run.
type Event interface {
	// ID is assigned by the store; zero before the event is appended.
	ID() int64
	RunID() string
	Type() string
	Timestamp() time.Time
	// Payload is the JSON encoding of the event body.
	Payload() []byte
	Metadata() map[string]string
}

// BaseEvent is the stored form of every event.
type BaseEvent struct {
	EventID        int64
	EventRunID     string
	EventType      string
	EventTimestamp time.Time
	EventPayload   []byte
	EventMetadata  map[string]string
}

func (e *BaseEvent) ID() int64                   { return e.EventID }
func (e *BaseEvent) RunID() string               { return e.EventRunID }
func (e *BaseEvent) Type() string                { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time        { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte             { return e.EventPayload }
func (e *BaseEvent) Metadata() map[string]string { return e.EventMetadata }
