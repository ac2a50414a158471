// Package metrics defines the observability hooks of graph generation.
//
// Components receive a Recorder through injection and default to
// NoopRecorder, so metrics cost nothing unless `monitoring.metrics` is
// enabled. The Prometheus implementation registers its collectors on a
// caller-supplied registry, which serve exposes at /metrics:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	gen := graph.NewGenerator(opts, graph.WithRecorder(rec))
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
