package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// DrawInput selects a draw date.
type DrawInput struct {
	Date string `json:"date" jsonschema:"draw date as YYYY-MM-DD; Buddhist-era years are accepted"`
}

// RepairInput is the input schema for the repair_draw tool.
type RepairInput struct {
	Date  string `json:"date" jsonschema:"draw date as YYYY-MM-DD"`
	Force bool   `json:"force,omitempty" jsonschema:"reprocess even when the record is already complete"`
}

// RunJobInput is the input schema for the run_job tool.
type RunJobInput struct {
	Job            string `json:"job" jsonschema:"one of live-sync, api-backfill, document-backfill, completeness-repair, stored-documents"`
	Days           int    `json:"days,omitempty" jsonschema:"window size in days (default 366)"`
	Pages          int    `json:"pages,omitempty" jsonschema:"API pages to read (api-backfill only)"`
	Limit          int    `json:"limit,omitempty" jsonschema:"records or files to scan"`
	MaxUpserts     int    `json:"max_upserts,omitempty" jsonschema:"stop after this many updated records"`
	Force          bool   `json:"force,omitempty" jsonschema:"reprocess complete records"`
	ReportOnly     bool   `json:"report_only,omitempty" jsonschema:"list candidates without fetching (stored-documents only)"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" jsonschema:"run-level timeout"`
}

// DrawOutput is one draw record.
type DrawOutput struct {
	Date      string              `json:"date"`
	Source    string              `json:"source"`
	Complete  bool                `json:"complete"`
	Warnings  []string            `json:"warnings,omitempty"`
	Prizes    map[string][]string `json:"prizes"`
	Amounts   map[string]int64    `json:"amounts,omitempty"`
	Document  string              `json:"document,omitempty"`
	UpdatedAt string              `json:"updated_at"`
}

// DateOutput is one line of a run report.
type DateOutput struct {
	Date     string   `json:"date"`
	Outcome  string   `json:"outcome"`
	Complete bool     `json:"complete"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// SummaryOutput is a finished run.
type SummaryOutput struct {
	RunID           string       `json:"run_id"`
	Job             string       `json:"job"`
	Scanned         int          `json:"scanned"`
	Updated         int          `json:"updated"`
	Completed       int          `json:"completed"`
	SkippedComplete int          `json:"skipped_complete"`
	Failed          int          `json:"failed"`
	Cutoff          string       `json:"cutoff,omitempty"`
	Stopped         string       `json:"stopped,omitempty"`
	DurationMS      int64        `json:"duration_ms"`
	Dates           []DateOutput `json:"dates,omitempty"`
}

// JobStatusInput filters the job_status tool.
type JobStatusInput struct {
	Job string `json:"job,omitempty" jsonschema:"limit the report to one job"`
}

// JobStatusOutput lists job schedules.
type JobStatusOutput struct {
	Jobs []JobStatus `json:"jobs"`
}

// JobStatus is one job's schedule and latest run.
type JobStatus struct {
	Job       string `json:"job"`
	Enabled   bool   `json:"enabled"`
	Interval  string `json:"interval"`
	NextRun   string `json:"next_run,omitempty"`
	LastError string `json:"last_error,omitempty"`

	LastRunID   string `json:"last_run_id,omitempty"`
	LastStarted string `json:"last_started,omitempty"`
	LastUpdated int    `json:"last_updated"`
	LastFailed  int    `json:"last_failed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_draw",
		Description: "Read the stored result for a draw date with its completeness diagnostics",
	}, s.handleGetDraw)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "repair_draw",
		Description: "Run the full source and fallback chain for one draw date",
	}, s.handleRepairDraw)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_job",
		Description: "Run a batch reconciliation job and return its summary",
	}, s.handleRunJob)

	if s.ports.Scheduler != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "job_status",
			Description: "List scheduled jobs with their next run and the outcome of their last run",
		}, s.handleJobStatus)
	}
}

func (s *Server) handleGetDraw(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DrawInput,
) (*mcp.CallToolResult, DrawOutput, error) {
	rec, err := s.ports.Jobs.Draw(ctx, input.Date)
	if err != nil {
		return nil, DrawOutput{}, err
	}
	return nil, toDrawOutput(rec), nil
}

func (s *Server) handleRepairDraw(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RepairInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	sum, err := s.ports.Jobs.RepairDate(ctx, input.Date, input.Force)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, toSummaryOutput(sum), nil
}

func (s *Server) handleRunJob(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunJobInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	if input.TimeoutSeconds < 0 {
		return nil, SummaryOutput{}, fmt.Errorf("%w: timeout_seconds must not be negative", domain.ErrInvalidWindow)
	}
	opts := domain.JobOptions{
		Days:       input.Days,
		Pages:      input.Pages,
		Limit:      input.Limit,
		MaxUpserts: input.MaxUpserts,
		Force:      input.Force,
		ReportOnly: input.ReportOnly,
		Timeout:    time.Duration(input.TimeoutSeconds) * time.Second,
	}
	sum, err := s.ports.Jobs.Run(ctx, domain.JobName(input.Job), opts)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, toSummaryOutput(sum), nil
}

func (s *Server) handleJobStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input JobStatusInput,
) (*mcp.CallToolResult, JobStatusOutput, error) {
	statuses, err := s.ports.Scheduler.Status(ctx)
	if err != nil {
		return nil, JobStatusOutput{}, err
	}

	out := JobStatusOutput{Jobs: []JobStatus{}}
	for _, st := range statuses {
		if input.Job != "" && st.Task.ID != input.Job {
			continue
		}
		out.Jobs = append(out.Jobs, toJobStatus(st))
	}
	if input.Job != "" && len(out.Jobs) == 0 {
		return nil, JobStatusOutput{}, fmt.Errorf("job %q: %w", input.Job, domain.ErrNotFound)
	}
	return nil, out, nil
}

func toJobStatus(st domain.TaskStatus) JobStatus {
	js := JobStatus{
		Job:       st.Task.ID,
		Enabled:   st.Task.Enabled,
		Interval:  st.Task.Interval.String(),
		LastError: st.Task.LastError,
	}
	if !st.Task.NextRun.IsZero() {
		js.NextRun = st.Task.NextRun.UTC().Format(time.RFC3339)
	}
	if r := st.Last; r != nil {
		js.LastRunID = r.RunID
		js.LastStarted = r.StartedAt.UTC().Format(time.RFC3339)
		js.LastUpdated = r.Updated
		js.LastFailed = r.Failed
	}
	return js
}

func toDrawOutput(rec *domain.DrawRecord) DrawOutput {
	out := DrawOutput{
		Date:      rec.Date,
		Source:    string(rec.Source),
		Complete:  rec.Diagnostics.Complete,
		Warnings:  rec.Diagnostics.Warnings,
		Prizes:    make(map[string][]string, len(rec.Prizes)),
		UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for c, nums := range rec.Prizes {
		out.Prizes[string(c)] = nums
	}
	if len(rec.Amounts) > 0 {
		out.Amounts = make(map[string]int64, len(rec.Amounts))
		for k, v := range rec.Amounts {
			out.Amounts[string(k)] = v
		}
	}
	if rec.Document != nil {
		out.Document = rec.Document.BlobPath
	}
	return out
}

func toSummaryOutput(sum *domain.RunSummary) SummaryOutput {
	out := SummaryOutput{
		RunID:           sum.RunID,
		Job:             string(sum.Job),
		Scanned:         sum.Scanned,
		Updated:         sum.Updated,
		Completed:       sum.Completed,
		SkippedComplete: sum.SkippedComplete,
		Failed:          sum.Failed,
		Cutoff:          sum.Cutoff,
		Stopped:         sum.Stopped,
		DurationMS:      sum.Duration.Milliseconds(),
	}
	for _, d := range sum.Dates {
		out.Dates = append(out.Dates, DateOutput{
			Date:     d.Date,
			Outcome:  string(d.Outcome),
			Complete: d.Complete,
			Warnings: d.Warnings,
			Error:    d.Error,
		})
	}
	return out
}
