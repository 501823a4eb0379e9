package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// Stage is one source consulted while reconciling a date.
// Returning domain.ErrStageUnavailable means the stage does not apply;
// it counts as neither success nor failure.
type Stage struct {
	Name string
	Run  func(ctx context.Context, st *DateState) (*domain.Extraction, error)
}

// DateState is the working state of one date's chain. Stages may read the
// merged record and leave hints, such as the document URL, for later ones.
type DateState struct {
	Date  string
	Force bool

	// Record is the record merged so far. Nil until something is known.
	Record *domain.DrawRecord

	// API is a payload fetched before the chain started, if any.
	API *domain.APIDraw

	// DocumentURL is the official sheet link the API reported.
	DocumentURL string
}

// Plan is the ordered chain for one date.
type Plan struct {
	// Primary stages always run, in order.
	Primary []Stage

	// Fallbacks run in order while the prize set is not full.
	Fallbacks []Stage

	// Skip filters a date after the stored record is loaded. A non-empty
	// reason skips it.
	Skip func(rec *domain.DrawRecord) string
}

// Reconciler runs a date through a plan and writes the result once.
type Reconciler struct {
	cfg     Config
	store   driven.DrawStore
	metrics driven.Metrics
}

// NewReconciler creates a reconciler.
func NewReconciler(cfg Config, store driven.DrawStore, metrics driven.Metrics) *Reconciler {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	return &Reconciler{cfg: cfg, store: store, metrics: metrics}
}

// Reconcile loads the record for st.Date, runs the plan and persists the
// merge with a single upsert. Stage errors are logged and the chain moves
// on; the date fails only when every stage that ran failed or the write
// failed. Nothing is written once ctx is done.
func (r *Reconciler) Reconcile(ctx context.Context, job domain.JobName, st *DateState, plan Plan) domain.DateResult {
	res := r.reconcile(ctx, job, st, plan)
	r.metrics.DateProcessed(job, res.Outcome)
	return res
}

//nolint:gocyclo // Sequential state machine for one date
func (r *Reconciler) reconcile(ctx context.Context, job domain.JobName, st *DateState, plan Plan) domain.DateResult {
	schema := r.cfg.Schema
	res := domain.DateResult{Date: st.Date}

	existing, err := r.store.Get(ctx, st.Date)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		res.Outcome = domain.OutcomeFailed
		res.Error = fmt.Errorf("%w: load: %w", domain.ErrPersistence, err).Error()
		logger.Warn("%s %s: %s", job, st.Date, res.Error)
		return res
	}
	st.Record = existing

	if plan.Skip != nil {
		if reason := plan.Skip(existing); reason != "" {
			res.Outcome = domain.OutcomeSkipped
			res.Complete = schema.Halted(existing)
			res.Warnings = []string{reason}
			return res
		}
	}
	if !st.Force && schema.Halted(existing) {
		res.Outcome = domain.OutcomeAlreadyComplete
		res.Complete = true
		return res
	}

	var attempted, succeeded int
	var learned bool
	var failures []string

	run := func(stage Stage) {
		ext, err := stage.Run(ctx, st)
		switch {
		case errors.Is(err, domain.ErrStageUnavailable):
			logger.Debug("%s %s: stage %s skipped: %v", job, st.Date, stage.Name, err)
			return
		case err != nil:
			attempted++
			failures = append(failures, fmt.Sprintf("%s: %v", stage.Name, err))
			res.Warnings = append(res.Warnings, stage.Name+"_failed")
			r.metrics.StageFailed(stage.Name)
			logger.Warn("%s %s: stage %s failed: %v", job, st.Date, stage.Name, err)
			return
		}
		attempted++
		succeeded++
		if ext.Empty() {
			return
		}
		learned = true
		st.Record, _ = schema.Merge(st.Record, st.Date, ext, r.cfg.now())
	}

	for _, stage := range plan.Primary {
		if ctx.Err() != nil {
			break
		}
		run(stage)
	}
	for _, stage := range plan.Fallbacks {
		if ctx.Err() != nil || (st.Record != nil && schema.PrizesFull(st.Record.Prizes)) {
			break
		}
		run(stage)
	}

	switch {
	case ctx.Err() != nil:
		res.Outcome = domain.OutcomeSkipped
		res.Error = fmt.Sprintf("interrupted: %v", ctx.Err())
		return res
	case attempted == 0:
		res.Outcome = domain.OutcomeSkipped
		res.Complete = schema.Halted(existing)
		res.Warnings = append(res.Warnings, "no_stage_available")
		return res
	case succeeded == 0:
		res.Outcome = domain.OutcomeFailed
		res.Complete = schema.Halted(existing)
		res.Error = strings.Join(failures, "; ")
		return res
	case !learned:
		res.Outcome = domain.OutcomeUnchanged
		if existing != nil {
			res.Complete = existing.Diagnostics.Complete
			res.Warnings = append(append([]string(nil), existing.Diagnostics.Warnings...), res.Warnings...)
		}
		return res
	}

	stored, changed, err := r.store.Upsert(ctx, st.Record)
	if err != nil {
		res.Outcome = domain.OutcomeFailed
		res.Error = fmt.Errorf("%w: %w", domain.ErrPersistence, err).Error()
		logger.Warn("%s %s: write failed: %v", job, st.Date, err)
		return res
	}
	st.Record = stored

	res.Outcome = domain.OutcomeUnchanged
	if changed {
		res.Outcome = domain.OutcomeUpdated
	}
	res.Complete = stored.Diagnostics.Complete
	res.Warnings = append(append([]string(nil), stored.Diagnostics.Warnings...), res.Warnings...)
	logger.Debug("%s %s: %s complete=%t", job, st.Date, res.Outcome, res.Complete)
	return res
}
