package services

import (
	"context"
	"sync"
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// historyKeep is how many runs are kept per job.
const historyKeep = 100

// JobRunner runs a job by name. *JobService implements it.
type JobRunner interface {
	Run(ctx context.Context, job domain.JobName, opts domain.JobOptions) (*domain.RunSummary, error)
}

// Scheduler runs jobs on their configured intervals. A job is never run
// twice concurrently; a due job whose previous run is still going waits
// for the next tick.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	jobs   JobRunner

	// tick is how often due tasks are checked.
	tick time.Duration

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	jobs JobRunner,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		jobs:     jobs,
		tick:     time.Minute,
		inFlight: make(map[string]bool),
	}
}

// Start runs the scheduler loop until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if !s.config.Enabled {
		logger.Info("scheduler: disabled")
	} else if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()

	return nil
}

// initialiseTasks stores a schedule for every job, enabled or not, and
// drops schedules of jobs that no longer exist.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	stored, err := s.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(domain.Jobs()))
	for _, job := range domain.Jobs() {
		known[string(job)] = true
	}
	for _, task := range stored {
		if known[task.ID] {
			continue
		}
		logger.Info("scheduler: dropping schedule of retired job %s", task.ID)
		if err := s.store.DeleteTask(ctx, task.ID); err != nil {
			return err
		}
	}

	for _, job := range domain.Jobs() {
		id := string(job)
		if err := s.ensureTask(ctx, id, s.config.GetTaskConfig(id)); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask applies cfg to the stored schedule of a job. A changed
// interval restarts the countdown from now.
func (s *Scheduler) ensureTask(ctx context.Context, id string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     id,
			Interval: cfg.Interval,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else if task.Interval != cfg.Interval {
		task.Interval = cfg.Interval
		task.NextRun = time.Now().Add(cfg.Interval)
	}
	task.Enabled = cfg.Active()

	return s.store.SaveTask(ctx, task)
}

// Status lists every stored job schedule with its latest run.
func (s *Scheduler) Status(ctx context.Context) ([]domain.TaskStatus, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TaskStatus, 0, len(tasks))
	for _, task := range tasks {
		st := domain.TaskStatus{Task: task}
		history, err := s.store.GetTaskHistory(ctx, task.ID, 1)
		if err != nil {
			return nil, err
		}
		if len(history) > 0 {
			st.Last = &history[0]
		}
		out = append(out, st)
	}
	return out, nil
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	if s.config.Enabled {
		s.checkAndRunDueTasks(ctx)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			if s.config.Enabled {
				s.checkAndRunDueTasks(ctx)
			}
		}
	}
}

// checkAndRunDueTasks finds and starts tasks that are due and not already running.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.runTask(ctx, &tasks[i])
		}
	}
}

// runTask executes a single task unless a previous run is still going.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		logger.Debug("scheduler: %s still running", task.ID)
		return
	}
	s.inFlight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()

		if s.jobs == nil {
			logger.Warn("scheduler: no job runner for %s", task.ID)
			return
		}

		started := time.Now()
		summary, err := s.jobs.Run(ctx, domain.JobName(task.ID), s.config.GetTaskConfig(task.ID).Options)
		result := domain.NewTaskResult(task.ID, started, time.Now(), summary, err)

		if err != nil {
			task.LastError = result.Error
			logger.Warn("scheduler: %s failed: %v", task.ID, err)
		} else {
			task.LastError = ""
			task.LastSuccess = result.EndedAt
			logger.Info("scheduler: %s updated %d of %d dates (%d failed) in %s",
				task.ID, result.Updated, result.Scanned, result.Failed, result.Duration().Round(time.Millisecond))
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, historyKeep); pruneErr != nil {
			logger.Warn("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}
