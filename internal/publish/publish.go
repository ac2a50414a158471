// Package publish pushes generated graphs to NATS JetStream.
package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docgraph/internal/graph"
	"git.home.luguber.info/inful/docgraph/internal/logfields"
	"git.home.luguber.info/inful/docgraph/internal/metrics"
)

// GraphPublishedEvent announces that a new graph is available in the KV bucket.
type GraphPublishedEvent struct {
	RunID       string    `json:"run_id"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	Revision    uint64    `json:"kv_revision"`
	Nodes       int       `json:"nodes"`
	Links       int       `json:"links"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Source      string    `json:"source_revision,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	PublishedAt time.Time `json:"published_at"`
}

// NewGraphPublishedEvent describes g as stored under bucket/key.
func NewGraphPublishedEvent(runID, bucket, key string, kvRevision uint64, g *graph.Graph, now time.Time) GraphPublishedEvent {
	return GraphPublishedEvent{
		RunID:       runID,
		Bucket:      bucket,
		Key:         key,
		Revision:    kvRevision,
		Nodes:       g.Metadata.TotalNodes,
		Links:       g.Metadata.TotalLinks,
		Fingerprint: g.Metadata.SourceFingerprint,
		Source:      g.Metadata.SourceRevision,
		GeneratedAt: g.Metadata.GeneratedAt,
		PublishedAt: now.UTC(),
	}
}

// Publisher delivers a graph to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, runID string, g *graph.Graph) (*GraphPublishedEvent, error)
	Close() error
}

// BestEffort publishes g and logs any failure instead of returning it.
// It reports whether publication succeeded.
func BestEffort(ctx context.Context, p Publisher, runID string, g *graph.Graph, rec metrics.Recorder) bool {
	if p == nil {
		return false
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	start := time.Now()
	evt, err := p.Publish(ctx, runID, g)
	rec.ObserveStageDuration(metrics.StagePublish, time.Since(start))
	rec.IncPublishResult(err == nil)
	if err != nil {
		slog.Warn("Graph publication failed; continuing", logfields.RunID(runID), logfields.Error(err))
		return false
	}

	slog.Info("Published graph",
		logfields.RunID(runID),
		logfields.Bucket(evt.Bucket),
		slog.String("key", evt.Key),
		logfields.Nodes(evt.Nodes),
		logfields.Links(evt.Links))
	return true
}

func encodeEvent(evt GraphPublishedEvent) ([]byte, error) {
	return json.Marshal(evt)
}
