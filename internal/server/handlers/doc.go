// Package handlers contains HTTP handlers for the docgraph HTTP API.
//
// This package provides handlers for:
//   - the full graph and page-local subgraphs
//   - health and run history
//
// All handlers report failures through the foundation/errors HTTP adapter.
package handlers
