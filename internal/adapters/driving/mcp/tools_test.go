package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

func sampleDraw() *domain.DrawRecord {
	return &domain.DrawRecord{
		Date:   "2024-06-16",
		Source: domain.ProvenanceOfficialDocument,
		Document: &domain.DocumentRef{
			Kind:     domain.ProvenanceOfficialDocument,
			BlobPath: "lottery_pdfs/2024-06-16_abc123.pdf",
		},
		Prizes:      domain.Prizes{domain.CategoryFirst: {"730209"}, domain.CategoryLast2: {"51"}},
		Amounts:     domain.Amounts{domain.AmountFirst: 6000000},
		Diagnostics: domain.Diagnostics{Complete: false, Warnings: []string{"missing_tier2"}},
		UpdatedAt:   time.Date(2024, 6, 16, 10, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T, jobs *mockJobService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Jobs: jobs}, "test")
	require.NoError(t, err)
	return server
}

func TestServer_handleGetDraw(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the record", func(t *testing.T) {
		jobs := &mockJobService{draw: sampleDraw()}
		server := newTestServer(t, jobs)

		_, out, err := server.handleGetDraw(ctx, nil, DrawInput{Date: "2567-06-16"})
		require.NoError(t, err)
		assert.Equal(t, "2567-06-16", jobs.lastDate, "normalisation is left to the service")
		assert.Equal(t, "2024-06-16", out.Date)
		assert.Equal(t, "official-document", out.Source)
		assert.False(t, out.Complete)
		assert.Equal(t, []string{"missing_tier2"}, out.Warnings)
		assert.Equal(t, []string{"730209"}, out.Prizes["first"])
		assert.Equal(t, int64(6000000), out.Amounts["first"])
		assert.Equal(t, "lottery_pdfs/2024-06-16_abc123.pdf", out.Document)
		assert.Equal(t, "2024-06-16T10:00:00Z", out.UpdatedAt)
	})

	t.Run("propagates not found", func(t *testing.T) {
		server := newTestServer(t, &mockJobService{})
		_, _, err := server.handleGetDraw(ctx, nil, DrawInput{Date: "2024-06-16"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleRepairDraw(t *testing.T) {
	jobs := &mockJobService{summary: &domain.RunSummary{
		RunID:    "run-1",
		Job:      domain.JobRepairDate,
		Scanned:  1,
		Updated:  1,
		Duration: 1500 * time.Millisecond,
		Dates:    []domain.DateResult{{Date: "2024-06-16", Outcome: domain.OutcomeUpdated, Complete: true}},
	}}
	server := newTestServer(t, jobs)

	_, out, err := server.handleRepairDraw(context.Background(), nil, RepairInput{Date: "2024-06-16", Force: true})
	require.NoError(t, err)
	assert.True(t, jobs.lastForce)
	assert.Equal(t, "2024-06-16", jobs.lastDate)
	assert.Equal(t, "repair-date", out.Job)
	assert.Equal(t, int64(1500), out.DurationMS)
	require.Len(t, out.Dates, 1)
	assert.Equal(t, "updated", out.Dates[0].Outcome)
}

func TestServer_handleRunJob(t *testing.T) {
	ctx := context.Background()

	t.Run("maps options", func(t *testing.T) {
		jobs := &mockJobService{summary: &domain.RunSummary{Job: domain.JobAPIBackfill}}
		server := newTestServer(t, jobs)

		_, out, err := server.handleRunJob(ctx, nil, RunJobInput{
			Job: "api-backfill", Days: 30, Pages: 2, MaxUpserts: 5, TimeoutSeconds: 90,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.JobAPIBackfill, jobs.lastJob)
		assert.Equal(t, domain.JobOptions{Days: 30, Pages: 2, MaxUpserts: 5, Timeout: 90 * time.Second}, jobs.lastOpts)
		assert.Equal(t, "api-backfill", out.Job)
	})

	t.Run("rejects negative timeout", func(t *testing.T) {
		server := newTestServer(t, &mockJobService{})
		_, _, err := server.handleRunJob(ctx, nil, RunJobInput{Job: "live-sync", TimeoutSeconds: -1})
		assert.ErrorIs(t, err, domain.ErrInvalidWindow)
	})

	t.Run("propagates service errors", func(t *testing.T) {
		server := newTestServer(t, &mockJobService{err: errors.New("unknown job")})
		_, _, err := server.handleRunJob(ctx, nil, RunJobInput{Job: "nightly"})
		assert.Error(t, err)
	})
}

func TestServer_handleJobStatus(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2024, 6, 16, 15, 0, 0, 0, time.UTC)
	sched := &mockScheduler{statuses: []domain.TaskStatus{
		{
			Task: domain.ScheduledTask{ID: string(domain.JobLiveSync), Interval: 30 * time.Minute, Enabled: true, NextRun: started.Add(30 * time.Minute)},
			Last: &domain.TaskResult{RunID: "r1", StartedAt: started, Success: true, Updated: 1},
		},
		{Task: domain.ScheduledTask{ID: string(domain.JobRepair), Interval: 6 * time.Hour}},
	}}
	server, err := NewServer(&Ports{Jobs: &mockJobService{}, Scheduler: sched}, "test")
	require.NoError(t, err)

	_, out, err := server.handleJobStatus(ctx, nil, JobStatusInput{})
	require.NoError(t, err)
	require.Len(t, out.Jobs, 2)
	assert.Equal(t, "30m0s", out.Jobs[0].Interval)
	assert.Equal(t, "2024-06-16T15:30:00Z", out.Jobs[0].NextRun)
	assert.Equal(t, "r1", out.Jobs[0].LastRunID)
	assert.Equal(t, 1, out.Jobs[0].LastUpdated)
	assert.Empty(t, out.Jobs[1].LastRunID)

	_, out, err = server.handleJobStatus(ctx, nil, JobStatusInput{Job: string(domain.JobRepair)})
	require.NoError(t, err)
	require.Len(t, out.Jobs, 1)
	assert.False(t, out.Jobs[0].Enabled)

	_, _, err = server.handleJobStatus(ctx, nil, JobStatusInput{Job: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sched.err = errors.New("locked")
	_, _, err = server.handleJobStatus(ctx, nil, JobStatusInput{})
	assert.EqualError(t, err, "locked")
}
