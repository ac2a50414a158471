package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration(StageRead, 150*time.Millisecond)
	pr.ObserveGenerationDuration(500 * time.Millisecond)
	pr.IncGenerationOutcome(OutcomeSuccess)
	pr.IncGenerationOutcome(OutcomeSuccess)
	pr.SetGraphSize(12, 30)
	pr.AddSkippedFiles(2)
	pr.AddSkippedFiles(0)
	pr.AddUnresolvedLinks(3)
	pr.IncPublishResult(false)

	values := gather(t, reg)
	require.InDelta(t, 2, values["docgraph_generation_outcomes_total"], 0)
	require.InDelta(t, 12, values["docgraph_graph_nodes"], 0)
	require.InDelta(t, 30, values["docgraph_graph_links"], 0)
	require.InDelta(t, 2, values["docgraph_skipped_files_total"], 0)
	require.InDelta(t, 3, values["docgraph_unresolved_links_total"], 0)
	require.InDelta(t, 1, values["docgraph_publish_results_total"], 0)
}

// gather sums counter and gauge samples per metric family.
func gather(t *testing.T, reg *prom.Registry) map[string]float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]float64, len(mfs))
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[mf.GetName()] += m.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).SetGraphSize(1, 0)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "docgraph_graph_nodes 1")
}
