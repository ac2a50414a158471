package eventstore

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// History appends events to a Store and keeps a projection of them current.
type History struct {
	store      Store
	projection *HistoryProjection
}

// OpenHistory opens the SQLite history at path and rebuilds its projection.
func OpenHistory(ctx context.Context, path string, maxSize int) (*History, error) {
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	h := NewHistory(store, maxSize)
	if err := h.projection.Rebuild(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return h, nil
}

// NewHistory wraps an already opened store. The projection starts empty.
func NewHistory(store Store, maxSize int) *History {
	return &History{store: store, projection: NewHistoryProjection(store, maxSize)}
}

// Record stores e and applies it to the projection. Only stored events are
// applied, so the projection never shows facts the database lacks.
func (h *History) Record(ctx context.Context, e Event) error {
	if err := h.store.Append(ctx, e); err != nil {
		slog.Warn("Failed to record history event", logfields.RunID(e.RunID()), slog.String("type", e.Type()), logfields.Error(err))
		return err
	}
	h.projection.Apply(e)
	return nil
}

// Projection exposes the read model.
func (h *History) Projection() *HistoryProjection {
	return h.projection
}

func (h *History) Close() error {
	return h.store.Close()
}
