package mcp

import (
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Jobs runs orchestrators and reads records. Required.
	Jobs driving.JobService

	// Scheduler backs the job_status tool. Optional; the tool is not
	// offered without it.
	Scheduler driving.Scheduler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Jobs == nil {
		return ErrMissingJobService
	}
	return nil
}
