package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
)

// schedulerStore keeps job schedules in scheduled_tasks and run history
// in task_results.
type schedulerStore struct {
	store *Store
}

// Ensure schedulerStore implements the interface.
var _ driven.SchedulerStore = (*schedulerStore)(nil)

const taskColumns = `id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled`

// GetTask retrieves a scheduled job by ID.
// Returns nil and no error if the task does not exist.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

// ListTasks returns all scheduled jobs ordered by ID.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying scheduled tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.ScheduledTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scheduled tasks: %w", err)
	}
	return tasks, nil
}

// SaveTask creates or replaces a job's schedule state.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled
	`, task.ID, task.Name, int64(task.Interval/time.Second),
		formatTime(task.LastRun), formatTime(task.NextRun),
		nullString(task.LastError), formatTime(task.LastSuccess),
		boolToInt(task.Enabled))
	if err != nil {
		return fmt.Errorf("saving scheduled task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes a job's schedule state. History is kept.
func (s *schedulerStore) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM scheduled_tasks WHERE id = ?", taskID); err != nil {
		return fmt.Errorf("deleting scheduled task %s: %w", taskID, err)
	}
	return nil
}

const resultColumns = `task_id, run_id, started_at, ended_at, success, error, scanned, updated, completed, failed, stopped`

// RecordResult appends one run to a job's history.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx,
		`INSERT INTO task_results (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.TaskID, nullString(result.RunID),
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.EndedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(result.Success), nullString(result.Error),
		result.Scanned, result.Updated, result.Completed, result.Failed,
		nullString(result.Stopped))
	if err != nil {
		return fmt.Errorf("recording result for %s: %w", result.TaskID, err)
	}
	return nil
}

// GetTaskHistory returns a job's most recent runs, newest first.
// A non-positive limit returns nothing.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+resultColumns+`
		FROM task_results
		WHERE task_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying task history: %w", err)
	}
	defer rows.Close()

	results := make([]domain.TaskResult, 0, limit)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task history: %w", err)
	}
	return results, nil
}

// PruneHistory keeps the newest keep results per job.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM task_results
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY started_at DESC, id DESC) AS rn
				FROM task_results
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning task history: %w", err)
	}
	return nil
}

func scanResult(row rowScanner) (*domain.TaskResult, error) {
	var r domain.TaskResult
	var runID, errMsg, stopped sql.NullString
	var startedAt, endedAt string
	var success int
	if err := row.Scan(&r.TaskID, &runID, &startedAt, &endedAt, &success, &errMsg,
		&r.Scanned, &r.Updated, &r.Completed, &r.Failed, &stopped); err != nil {
		return nil, fmt.Errorf("scanning task result: %w", err)
	}
	r.RunID = runID.String
	r.StartedAt = parseTime(startedAt)
	r.EndedAt = parseTime(endedAt)
	r.Success = success == 1
	r.Error = errMsg.String
	r.Stopped = stopped.String
	return &r, nil
}

func scanTask(row rowScanner) (*domain.ScheduledTask, error) {
	var task domain.ScheduledTask
	var intervalSeconds int64
	var lastRun, nextRun, lastError, lastSuccess sql.NullString
	var enabled int

	if err := row.Scan(&task.ID, &task.Name, &intervalSeconds,
		&lastRun, &nextRun, &lastError, &lastSuccess, &enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning scheduled task: %w", err)
	}

	task.Interval = time.Duration(intervalSeconds) * time.Second
	task.LastRun = parseTime(lastRun.String)
	task.NextRun = parseTime(nextRun.String)
	task.LastError = lastError.String
	task.LastSuccess = parseTime(lastSuccess.String)
	task.Enabled = enabled == 1
	return &task, nil
}

// formatTime stores zero times as NULL.
func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime returns the zero time for empty or malformed values.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
