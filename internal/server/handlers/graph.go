package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/graph"
)

// GraphSource provides the graph currently being served and, when it is a
// fallback, the notice explaining why.
type GraphSource interface {
	Current() (*graph.Graph, string)
}

// GraphHandlers serves the full graph and page-local subgraphs.
type GraphHandlers struct {
	source       GraphSource
	errorAdapter *errors.HTTPErrorAdapter
}

func NewGraphHandlers(source GraphSource) *GraphHandlers {
	return &GraphHandlers{
		source:       source,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleGraph serves the complete graph document.
func (h *GraphHandlers) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r, h.errorAdapter) {
		return
	}
	g, notice := h.source.Current()
	h.write(w, r, g, notice)
}

// HandleLocal serves the neighborhood of the page named by ?path=, which may
// be a URL path or a node id.
func (h *GraphHandlers) HandleLocal(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r, h.errorAdapter) {
		return
	}
	current := strings.TrimSpace(r.URL.Query().Get("path"))
	if current == "" {
		err := errors.ValidationError("missing path query parameter").
			WithContext("parameter", "path").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	g, notice := h.source.Current()
	h.write(w, r, graph.Local(g, current), notice)
}

func (h *GraphHandlers) write(w http.ResponseWriter, r *http.Request, g *graph.Graph, notice string) {
	if notice != "" {
		w.Header().Set(NoticeHeader, notice)
	}
	w.Header().Set("Cache-Control", "no-cache")
	if err := writeJSONPretty(w, r, http.StatusOK, g); err != nil {
		internalErr := errors.WrapError(err, errors.CategoryInternal, "failed to write graph response").
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, internalErr)
	}
}
