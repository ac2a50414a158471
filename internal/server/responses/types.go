// Package responses defines API response types used by the docgraph HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/docgraph/internal/eventstore"
)

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Uptime      float64   `json:"uptime"`
	Nodes       int       `json:"nodes"`
	Links       int       `json:"links"`
	GeneratedAt time.Time `json:"generated_at"`
	// Notice is set when the served graph is a fallback.
	Notice  string                 `json:"notice,omitempty"`
	LastRun *eventstore.RunSummary `json:"last_run,omitempty"`
}

// HistoryResponse lists recent generation runs, newest first.
type HistoryResponse struct {
	Runs  []eventstore.RunSummary `json:"runs"`
	Total int                     `json:"total"`
}
