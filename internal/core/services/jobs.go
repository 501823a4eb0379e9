package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
	"github.com/vittaya051733-boop/tungtong1/internal/drawdate"
	"github.com/vittaya051733-boop/tungtong1/internal/extract"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
	"github.com/vittaya051733-boop/tungtong1/internal/normalisers/pdf"
)

// Ensure JobService implements the interface.
var _ driving.JobService = (*JobService)(nil)

var validateDocument = pdf.Validate

// skipHasOfficialDocument marks dates that already hold the official sheet.
const skipHasOfficialDocument = "has_official_document"

// JobService runs the batch orchestrators. Dates are processed one at a
// time, newest first.
type JobService struct {
	cfg        Config
	store      driven.DrawStore
	blobs      driven.BlobStore
	sources    Sources
	documents  *DocumentReader
	reconciler *Reconciler
	metrics    driven.Metrics
}

// NewJobService creates the job service.
func NewJobService(
	cfg Config,
	store driven.DrawStore,
	blobs driven.BlobStore,
	sources Sources,
	documents *DocumentReader,
	metrics driven.Metrics,
) *JobService {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &JobService{
		cfg:        cfg,
		store:      store,
		blobs:      blobs,
		sources:    sources,
		documents:  documents,
		reconciler: NewReconciler(cfg, store, metrics),
		metrics:    metrics,
	}
}

// Run dispatches a schedulable job by name.
func (s *JobService) Run(ctx context.Context, job domain.JobName, opts domain.JobOptions) (*domain.RunSummary, error) {
	switch job {
	case domain.JobLiveSync:
		return s.LiveSync(ctx, opts)
	case domain.JobAPIBackfill:
		return s.BackfillFromAPI(ctx, opts)
	case domain.JobDocumentBackfill:
		return s.BackfillDocuments(ctx, opts)
	case domain.JobRepair:
		return s.Repair(ctx, opts)
	case domain.JobStoredDocuments:
		return s.CompleteFromStored(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: unknown job %q", domain.ErrInvalidInput, job)
	}
}

// LiveSync reconciles the most recently published draw: API payload first,
// then the official sheet, then fallbacks.
func (s *JobService) LiveSync(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	if _, err := s.cfg.resolveWindow(opts, nil, nil, nil); err != nil {
		return nil, err
	}
	if s.sources.API == nil {
		return nil, fmt.Errorf("%s: %w: results api not configured", domain.JobLiveSync, domain.ErrInvalidInput)
	}
	ctx, cancel := withTimeout(ctx, opts)
	defer cancel()

	sum := s.begin(domain.JobLiveSync, "")
	defer s.finish(sum)

	latest, err := s.sources.API.Latest(ctx)
	if err != nil {
		s.metrics.StageFailed(StageAPI)
		logger.Warn("%s: latest draw: %v", domain.JobLiveSync, err)
		sum.Record(domain.DateResult{Outcome: domain.OutcomeFailed, Error: err.Error()})
		return sum, nil
	}

	st := &DateState{Date: latest.Date, Force: opts.Force, API: latest}
	sum.Record(s.reconciler.Reconcile(ctx, domain.JobLiveSync, st, Plan{
		Primary:   []Stage{s.apiStage(), s.officialStage()},
		Fallbacks: s.fallbacks(),
	}))
	return sum, nil
}

// BackfillFromAPI walks the paged history newest first. Paging stops at the
// page that reaches past the window or at the page limit.
func (s *JobService) BackfillFromAPI(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	w, err := s.cfg.resolveWindow(opts, &apiPagesBounds, nil, &apiUpsertsBounds)
	if err != nil {
		return nil, err
	}
	if s.sources.API == nil {
		return nil, fmt.Errorf("%s: %w: results api not configured", domain.JobAPIBackfill, domain.ErrInvalidInput)
	}
	ctx, cancel := withTimeout(ctx, opts)
	defer cancel()

	sum := s.begin(domain.JobAPIBackfill, w.cutoff)
	defer s.finish(sum)

	for page := 1; page <= w.pages; page++ {
		if s.stopped(ctx, sum, w.maxUpserts) {
			return sum, nil
		}
		draws, err := s.sources.API.Page(ctx, page)
		if err != nil {
			s.metrics.StageFailed(StageAPI)
			logger.Warn("%s: page %d: %v", domain.JobAPIBackfill, page, err)
			sum.Stopped = fmt.Sprintf("page %d: %v", page, err)
			return sum, nil
		}
		if len(draws) == 0 {
			return sum, nil
		}

		reachedCutoff := false
		for i := range draws {
			draw := &draws[i]
			if draw.Date < w.cutoff {
				reachedCutoff = true
				continue
			}
			if s.stopped(ctx, sum, w.maxUpserts) {
				return sum, nil
			}
			st := &DateState{Date: draw.Date, Force: opts.Force, API: draw}
			sum.Record(s.reconciler.Reconcile(ctx, domain.JobAPIBackfill, st, Plan{
				Primary: []Stage{s.apiStage()},
			}))
		}
		if reachedCutoff {
			return sum, nil
		}
	}
	return sum, nil
}

// BackfillDocuments attaches mirror sheets to stored records that lack the
// official sheet.
func (s *JobService) BackfillDocuments(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	w, err := s.cfg.resolveWindow(opts, nil, &docLimitBounds, &docUpsertBounds)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, opts)
	defer cancel()

	sum := s.begin(domain.JobDocumentBackfill, w.cutoff)
	defer s.finish(sum)

	records, err := s.store.ListSince(ctx, w.cutoff, w.limit, 0)
	if err != nil {
		return sum, fmt.Errorf("%s: %w: %w", domain.JobDocumentBackfill, domain.ErrPersistence, err)
	}

	plan := Plan{
		Primary: []Stage{s.mirrorStage()},
		Skip: func(rec *domain.DrawRecord) string {
			if !opts.Force && rec.HasOfficialDocument() {
				return skipHasOfficialDocument
			}
			return ""
		},
	}
	for i := range records {
		if s.stopped(ctx, sum, w.maxUpserts) {
			break
		}
		st := &DateState{Date: records[i].Date, Force: opts.Force}
		sum.Record(s.reconciler.Reconcile(ctx, domain.JobDocumentBackfill, st, plan))
	}
	return sum, nil
}

// Repair runs the full chain over stored records in the window.
func (s *JobService) Repair(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	w, err := s.cfg.resolveWindow(opts, nil, &repairLimitBounds, &repairUpsertBounds)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, opts)
	defer cancel()

	sum := s.begin(domain.JobRepair, w.cutoff)
	defer s.finish(sum)

	records, err := s.store.ListSince(ctx, w.cutoff, w.limit, 0)
	if err != nil {
		return sum, fmt.Errorf("%s: %w: %w", domain.JobRepair, domain.ErrPersistence, err)
	}

	for i := range records {
		if s.stopped(ctx, sum, w.maxUpserts) {
			break
		}
		st := &DateState{Date: records[i].Date, Force: opts.Force}
		sum.Record(s.reconciler.Reconcile(ctx, domain.JobRepair, st, s.repairPlan()))
	}
	return sum, nil
}

// RepairDate runs the full chain for one date, creating the record if needed.
func (s *JobService) RepairDate(ctx context.Context, date string, force bool) (*domain.RunSummary, error) {
	date, err := drawdate.Normalize(date)
	if err != nil {
		return nil, err
	}

	sum := s.begin(domain.JobRepairDate, "")
	defer s.finish(sum)

	st := &DateState{Date: date, Force: force}
	sum.Record(s.reconciler.Reconcile(ctx, domain.JobRepairDate, st, s.repairPlan()))
	return sum, nil
}

func (s *JobService) repairPlan() Plan {
	return Plan{
		Primary:   []Stage{s.apiStage(), s.officialStage()},
		Fallbacks: s.fallbacks(),
	}
}

// IngestUpload stores an operator-supplied sheet and merges what it holds.
// The date comes from the upload or, failing that, the sheet heading.
func (s *JobService) IngestUpload(ctx context.Context, up domain.Upload) (*domain.RunSummary, error) {
	if err := validateDocument(up.Content); err != nil {
		return nil, err
	}
	raw := &domain.RawDocument{
		Kind:    domain.ProvenanceUpload,
		Origin:  "local_upload",
		Content: up.Content,
	}
	raw.ID = "upload:" + raw.SHA256()[:12]

	date, err := s.uploadDate(ctx, up, raw)
	if err != nil {
		return nil, err
	}

	sum := s.begin(domain.JobUpload, "")
	defer s.finish(sum)

	stage := Stage{Name: StageUpload, Run: func(ctx context.Context, st *DateState) (*domain.Extraction, error) {
		extra := map[string]string{}
		if up.Filename != "" {
			extra["originalFileName"] = up.Filename
		}
		doc, ref, err := s.documents.Store(ctx, st.Date, raw, extra)
		if err != nil {
			return nil, err
		}
		return s.documents.Parse(ctx, st.Date, doc, ref), nil
	}}

	st := &DateState{Date: date, Force: true}
	sum.Record(s.reconciler.Reconcile(ctx, domain.JobUpload, st, Plan{
		Primary: []Stage{stage},
		Skip: func(rec *domain.DrawRecord) string {
			if !up.Force && rec.HasOfficialDocument() && s.cfg.Schema.PrizesFull(rec.Prizes) {
				return skipHasOfficialDocument
			}
			return ""
		},
	}))
	return sum, nil
}

func (s *JobService) uploadDate(ctx context.Context, up domain.Upload, raw *domain.RawDocument) (string, error) {
	var date string
	if up.Date != "" {
		d, err := drawdate.Normalize(up.Date)
		if err != nil {
			return "", err
		}
		date = d
	} else {
		d, ok := extract.DrawDate(s.documents.Text(ctx, raw))
		if !ok {
			return "", fmt.Errorf("%w: no date given and none found in the sheet", domain.ErrInvalidInput)
		}
		date = d
	}

	if up.Start != "" {
		start, err := drawdate.Normalize(up.Start)
		if err != nil {
			return "", err
		}
		if date < start {
			return "", fmt.Errorf("%w: draw date %s before %s", domain.ErrInvalidInput, date, start)
		}
	}
	if up.End != "" {
		end, err := drawdate.Normalize(up.End)
		if err != nil {
			return "", err
		}
		if date > end {
			return "", fmt.Errorf("%w: draw date %s after %s", domain.ErrInvalidInput, date, end)
		}
	}
	return date, nil
}

// CompleteFromStored re-reads stored sheets for dates in the window. With
// ReportOnly it lists incomplete records without reading anything.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *JobService) CompleteFromStored(ctx context.Context, opts domain.JobOptions) (*domain.RunSummary, error) {
	w, err := s.cfg.resolveWindow(opts, nil, &sweepFilesBounds, &repairUpsertBounds)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, opts)
	defer cancel()

	sum := s.begin(domain.JobStoredDocuments, w.cutoff)
	defer s.finish(sum)

	infos, err := s.blobs.List(ctx, domain.DocumentRoot, w.limit)
	if err != nil {
		return sum, fmt.Errorf("%s: list documents: %w", domain.JobStoredDocuments, err)
	}

	reported := map[string]bool{}
	for _, info := range infos {
		if s.stopped(ctx, sum, w.maxUpserts) {
			break
		}

		date, ok := s.storedDate(ctx, info)
		if !ok {
			logger.Warn("%s: no draw date for %s", domain.JobStoredDocuments, info.Path)
			sum.Record(domain.DateResult{Outcome: domain.OutcomeSkipped, Error: "no draw date for " + info.Path})
			continue
		}
		if date < w.cutoff {
			continue
		}

		if opts.ReportOnly {
			if reported[date] {
				continue
			}
			reported[date] = true
			sum.Record(s.report(ctx, date))
			continue
		}

		st := &DateState{Date: date, Force: opts.Force}
		sum.Record(s.reconciler.Reconcile(ctx, domain.JobStoredDocuments, st, Plan{
			Primary: []Stage{s.storedStage(info)},
		}))
	}
	return sum, nil
}

// storedDate finds the draw date of a stored sheet: path, then metadata,
// then the sheet heading.
func (s *JobService) storedDate(ctx context.Context, info driven.BlobInfo) (string, bool) {
	if date, ok := domain.DocumentDate(info.Path); ok {
		if d, err := drawdate.Normalize(date); err == nil {
			return d, true
		}
	}
	if d, err := drawdate.Normalize(info.Metadata["date"]); err == nil {
		return d, true
	}
	raw, err := s.documents.Load(ctx, info)
	if err != nil {
		return "", false
	}
	return extract.DrawDate(s.documents.Text(ctx, raw))
}

func (s *JobService) report(ctx context.Context, date string) domain.DateResult {
	res := domain.DateResult{Date: date, Outcome: domain.OutcomeSkipped}
	rec, err := s.store.Get(ctx, date)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		res.Warnings = []string{"missing_record"}
	case err != nil:
		res.Outcome = domain.OutcomeFailed
		res.Error = err.Error()
	case s.cfg.Schema.Halted(rec):
		res.Outcome = domain.OutcomeAlreadyComplete
		res.Complete = true
	default:
		res.Warnings = rec.Diagnostics.Warnings
	}
	return res
}

// Draw returns the stored record for a date.
func (s *JobService) Draw(ctx context.Context, date string) (*domain.DrawRecord, error) {
	date, err := drawdate.Normalize(date)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, date)
}

func (s *JobService) begin(job domain.JobName, cutoff string) *domain.RunSummary {
	logger.Section(string(job))
	return &domain.RunSummary{
		RunID:     uuid.NewString(),
		Job:       job,
		Cutoff:    cutoff,
		StartedAt: s.cfg.now(),
	}
}

func (s *JobService) finish(sum *domain.RunSummary) {
	sum.Duration = s.cfg.now().Sub(sum.StartedAt)
	s.metrics.RunFinished(sum.Job, sum.Duration)
	logger.Info("%s run %s: scanned=%d updated=%d completed=%d skipped_complete=%d failed=%d cutoff=%s stopped=%q",
		sum.Job, sum.RunID, sum.Scanned, sum.Updated, sum.Completed, sum.SkippedComplete, sum.Failed,
		sum.Cutoff, sum.Stopped)
}

// stopped reports whether the run must end before the next date.
func (s *JobService) stopped(ctx context.Context, sum *domain.RunSummary, maxUpserts int) bool {
	if err := ctx.Err(); err != nil {
		sum.Stopped = err.Error()
		return true
	}
	if maxUpserts > 0 && sum.Updated >= maxUpserts {
		sum.Stopped = "max upserts reached"
		return true
	}
	return false
}

func withTimeout(ctx context.Context, opts domain.JobOptions) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return context.WithCancel(ctx)
}
