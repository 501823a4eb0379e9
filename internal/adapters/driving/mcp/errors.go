// Package mcp provides an MCP (Model Context Protocol) server adapter for drawsync.
// It lets AI assistants inspect draw records and trigger reconciliation runs.
package mcp

import "errors"

// ErrMissingJobService is returned when the job service is not provided.
var ErrMissingJobService = errors.New("mcp: job service is required")
