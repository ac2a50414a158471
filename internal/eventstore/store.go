package eventstore

import (
	"context"
	"time"
)

// Store persists and retrieves events.
type Store interface {
	// Append stores e with its own timestamp.
	Append(ctx context.Context, e Event) error

	// GetByRunID retrieves all events of one run in append order.
	GetByRunID(ctx context.Context, runID string) ([]Event, error)

	// GetRange retrieves events with start <= timestamp <= end.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	Close() error
}
