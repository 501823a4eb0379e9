package domain

import "time"

// ScheduledTask is the schedule state of one batch job. ID is a JobName.
type ScheduledTask struct {
	ID   string
	Name string

	Interval time.Duration
	Enabled  bool

	// LastRun is when the job last started.
	LastRun time.Time

	// NextRun is when the job is next due. Zero means now.
	NextRun time.Time

	// LastSuccess is when a run last finished without error.
	LastSuccess time.Time

	// LastError is the error of the most recent run, or "".
	LastError string
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && (t.NextRun.IsZero() || !t.NextRun.After(now))
}

// TaskResult is one scheduled run of a job, kept as history.
type TaskResult struct {
	TaskID string

	// RunID matches the RunSummary of the run, when it produced one.
	RunID string

	StartedAt time.Time
	EndedAt   time.Time

	Success bool
	Error   string

	// Counters copied from the run summary.
	Scanned   int
	Updated   int
	Completed int
	Failed    int

	// Stopped is the summary's stop reason, such as a hit upsert cap.
	Stopped string
}

// NewTaskResult records the outcome of a run. sum may be nil when the job
// failed before processing any date.
func NewTaskResult(taskID string, started, ended time.Time, sum *RunSummary, err error) *TaskResult {
	r := &TaskResult{
		TaskID:    taskID,
		StartedAt: started,
		EndedAt:   ended,
		Success:   err == nil,
	}
	if err != nil {
		r.Error = err.Error()
	}
	if sum != nil {
		r.RunID = sum.RunID
		r.Scanned = sum.Scanned
		r.Updated = sum.Updated
		r.Completed = sum.Completed
		r.Failed = sum.Failed
		r.Stopped = sum.Stopped
	}
	return r
}

// Duration is how long the run took.
func (r *TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// TaskStatus pairs a job's schedule with its most recent run.
type TaskStatus struct {
	Task ScheduledTask

	// Last is nil until the job has run once.
	Last *TaskResult
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// TaskConfigs is keyed by job name.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig is the schedule of one job.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration

	// Options bound each scheduled run. Zero values take job defaults.
	Options JobOptions
}

// Active reports whether the job runs at all. A job without an interval
// never becomes due.
func (c TaskConfig) Active() bool {
	return c.Enabled && c.Interval > 0
}

// GetTaskConfig returns the configuration for a job.
// Returns a zero TaskConfig if the job is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns the default job cadence.
// Backfills run daily; live-sync runs often enough to catch a draw
// within the hour it is published.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			string(JobLiveSync):         {Enabled: true, Interval: 30 * time.Minute},
			string(JobRepair):           {Enabled: true, Interval: 6 * time.Hour},
			string(JobAPIBackfill):      {Enabled: true, Interval: 24 * time.Hour},
			string(JobDocumentBackfill): {Enabled: true, Interval: 24 * time.Hour},
			string(JobStoredDocuments):  {Enabled: false, Interval: 7 * 24 * time.Hour},
		},
	}
}
