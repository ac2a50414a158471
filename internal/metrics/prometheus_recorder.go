package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docgraph"

// PrometheusRecorder implements Recorder using Prometheus collectors.
type PrometheusRecorder struct {
	stageDuration      *prom.HistogramVec
	generationDuration prom.Histogram
	outcomes           *prom.CounterVec
	nodes              prom.Gauge
	links              prom.Gauge
	skipped            prom.Counter
	unresolved         prom.Counter
	publishResults     *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		generationDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Total graph generation duration",
			Buckets:   prom.DefBuckets,
		}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "generation_outcomes_total",
			Help:      "Generation runs by outcome",
		}, []string{"outcome"}),
		nodes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Node count of the last generated graph",
		}),
		links: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_links",
			Help:      "Edge count of the last generated graph",
		}),
		skipped: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_files_total",
			Help:      "Content files skipped because they could not be read or parsed",
		}),
		unresolved: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_links_total",
			Help:      "Local link targets that matched no node",
		}),
		publishResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_results_total",
			Help:      "Graph publication attempts by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.stageDuration, pr.generationDuration, pr.outcomes, pr.nodes, pr.links,
		pr.skipped, pr.unresolved, pr.publishResults)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveGenerationDuration(d time.Duration) {
	p.generationDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGenerationOutcome(outcome OutcomeLabel) {
	p.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetGraphSize(nodes, links int) {
	p.nodes.Set(float64(nodes))
	p.links.Set(float64(links))
}

func (p *PrometheusRecorder) AddSkippedFiles(n int) {
	if n > 0 {
		p.skipped.Add(float64(n))
	}
}

func (p *PrometheusRecorder) AddUnresolvedLinks(n int) {
	if n > 0 {
		p.unresolved.Add(float64(n))
	}
}

func (p *PrometheusRecorder) IncPublishResult(success bool) {
	res := "failed"
	if success {
		res = "success"
	}
	p.publishResults.WithLabelValues(res).Inc()
}
