package mcp

import (
	"context"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
)

// Ensure mockJobService implements the interface.
var _ driving.JobService = (*mockJobService)(nil)

// Ensure mockScheduler implements the interface.
var _ driving.Scheduler = (*mockScheduler)(nil)

type mockScheduler struct {
	statuses []domain.TaskStatus
	err      error
}

func (m *mockScheduler) Start(context.Context) error { return nil }

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) Status(context.Context) ([]domain.TaskStatus, error) {
	return m.statuses, m.err
}

// mockJobService is a mock implementation of driving.JobService.
type mockJobService struct {
	draw    *domain.DrawRecord
	summary *domain.RunSummary
	err     error

	lastJob   domain.JobName
	lastOpts  domain.JobOptions
	lastDate  string
	lastForce bool
}

func (m *mockJobService) run(job domain.JobName, opts domain.JobOptions) (*domain.RunSummary, error) {
	m.lastJob = job
	m.lastOpts = opts
	return m.summary, m.err
}

func (m *mockJobService) Run(_ context.Context, job domain.JobName, opts domain.JobOptions) (*domain.RunSummary, error) {
	return m.run(job, opts)
}

func (m *mockJobService) LiveSync(_ context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	return m.run(domain.JobLiveSync, opts)
}

func (m *mockJobService) BackfillFromAPI(_ context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	return m.run(domain.JobAPIBackfill, opts)
}

func (m *mockJobService) BackfillDocuments(_ context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	return m.run(domain.JobDocumentBackfill, opts)
}

func (m *mockJobService) Repair(_ context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	return m.run(domain.JobRepair, opts)
}

func (m *mockJobService) CompleteFromStored(_ context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	return m.run(domain.JobStoredDocuments, opts)
}

func (m *mockJobService) RepairDate(_ context.Context, date string, force bool) (*domain.RunSummary, error) {
	m.lastDate = date
	m.lastForce = force
	return m.run(domain.JobRepairDate, domain.JobOptions{Force: force})
}

func (m *mockJobService) IngestUpload(_ context.Context, upload domain.Upload) (*domain.RunSummary, error) {
	m.lastDate = upload.Date
	return m.run(domain.JobUpload, domain.JobOptions{Force: upload.Force})
}

func (m *mockJobService) Draw(_ context.Context, date string) (*domain.DrawRecord, error) {
	m.lastDate = date
	if m.err != nil {
		return nil, m.err
	}
	if m.draw == nil {
		return nil, domain.ErrNotFound
	}
	return m.draw, nil
}
