// Package driving defines what the CLI, the HTTP API, the MCP server and
// the upload inbox call into: the job service and the scheduler.
//
// Implementations live in internal/core/services.
package driving
