package driving

import (
	"context"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// Scheduler runs the batch jobs on their configured intervals.
type Scheduler interface {
	// Start runs due jobs until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop waits for in-flight runs and returns.
	Stop() error

	// Status lists every job schedule with its latest run.
	Status(ctx context.Context) ([]domain.TaskStatus, error)
}
