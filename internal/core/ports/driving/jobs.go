package driving

import (
	"context"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// JobService is the entry point for every orchestrator run. Each call
// returns a summary; per-date failures are counted in it rather than
// returned. Only a bad window or invalid input is returned as an error.
type JobService interface {
	// Run dispatches a schedulable job by name.
	Run(ctx context.Context, job domain.JobName, opts domain.JobOptions) (*domain.RunSummary, error)

	// LiveSync reconciles the most recently published draw.
	LiveSync(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error)

	// BackfillFromAPI walks the paged results history inside the window.
	BackfillFromAPI(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error)

	// BackfillDocuments attaches mirror sheets to records without the official sheet.
	BackfillDocuments(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error)

	// Repair runs the full fallback chain over incomplete records in the window.
	Repair(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error)

	// CompleteFromStored re-reads documents already in the blob store.
	CompleteFromStored(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error)

	// RepairDate runs the full fallback chain for one date.
	RepairDate(ctx context.Context, date string, force bool) (*domain.RunSummary, error)

	// IngestUpload stores and reads an operator-supplied sheet.
	IngestUpload(ctx context.Context, upload domain.Upload) (*domain.RunSummary, error)

	// Draw returns the stored record for a date.
	Draw(ctx context.Context, date string) (*domain.DrawRecord, error)
}
