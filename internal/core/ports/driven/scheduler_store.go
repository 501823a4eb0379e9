package driven

import (
	"context"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// SchedulerStore keeps job schedules and run history across restarts, so
// a restarted process does not rerun every job at once.
type SchedulerStore interface {
	// GetTask returns nil and no error for an unknown job.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns every stored schedule ordered by ID.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or replaces a schedule.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask drops the schedule of a job that no longer exists.
	// Its history is kept until pruned.
	DeleteTask(ctx context.Context, taskID string) error

	// RecordResult appends a run to the job's history.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns up to limit runs, newest first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps the newest keep runs per job.
	PruneHistory(ctx context.Context, keep int) error
}
