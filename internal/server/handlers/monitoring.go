package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/docgraph/internal/eventstore"
	"git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/server/responses"
	"git.home.luguber.info/inful/docgraph/internal/version"
)

// RunHistory is the read side of the generation history.
type RunHistory interface {
	Recent(n int) []eventstore.RunSummary
}

// MonitoringHandlers serves health and run history.
type MonitoringHandlers struct {
	source       GraphSource
	history      RunHistory
	startTime    time.Time
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates monitoring handlers. history may be nil.
func NewMonitoringHandlers(source GraphSource, history RunHistory, startTime time.Time) *MonitoringHandlers {
	return &MonitoringHandlers{
		source:       source,
		history:      history,
		startTime:    startTime,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck reports "healthy", or "degraded" when only the fallback
// graph is available.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r, h.errorAdapter) {
		return
	}

	g, notice := h.source.Current()
	health := &responses.HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Version:     version.Version,
		Uptime:      time.Since(h.startTime).Seconds(),
		Nodes:       g.Metadata.TotalNodes,
		Links:       g.Metadata.TotalLinks,
		GeneratedAt: g.Metadata.GeneratedAt,
		Notice:      notice,
	}
	if notice != "" {
		health.Status = "degraded"
		w.Header().Set(NoticeHeader, notice)
	}
	if h.history != nil {
		if runs := h.history.Recent(1); len(runs) > 0 {
			health.LastRun = &runs[0]
		}
	}

	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write health response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}

// HandleHistory lists recent runs; ?limit= caps the count (default 20).
func (h *MonitoringHandlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r, h.errorAdapter) {
		return
	}
	if h.history == nil {
		err := errors.NewError(errors.CategoryNotFound, "run history is disabled").Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			verr := errors.ValidationError("limit must be a positive integer").
				WithContext("limit", raw).
				Build()
			h.errorAdapter.WriteErrorResponse(w, r, verr)
			return
		}
		limit = n
	}

	runs := h.history.Recent(limit)
	if runs == nil {
		runs = []eventstore.RunSummary{}
	}
	if err := writeJSONPretty(w, r, http.StatusOK, &responses.HistoryResponse{Runs: runs, Total: len(runs)}); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write history response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
