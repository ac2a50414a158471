// Package build provides the canonical graph generation pipeline.
//
// All execution paths (the generate command, scheduled refreshes in serve,
// tests) route through Service, which wraps graph generation with run
// history, persistence, publication and metrics.
package build
