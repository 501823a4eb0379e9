package domain

import "time"

// JobName identifies a batch orchestrator.
type JobName string

// Batch jobs.
const (
	JobLiveSync         JobName = "live-sync"
	JobAPIBackfill      JobName = "api-backfill"
	JobDocumentBackfill JobName = "document-backfill"
	JobRepair           JobName = "completeness-repair"
	JobRepairDate       JobName = "repair-date"
	JobUpload           JobName = "upload"
	JobStoredDocuments  JobName = "stored-documents"
)

// Jobs lists the jobs that can run on a schedule or trigger.
func Jobs() []JobName {
	return []JobName{JobLiveSync, JobAPIBackfill, JobDocumentBackfill, JobRepair, JobStoredDocuments}
}

// Outcome is the result of reconciling one date.
type Outcome string

const (
	// OutcomeAlreadyComplete means the date met the halt condition and was not processed.
	OutcomeAlreadyComplete Outcome = "already-complete"

	// OutcomeUpdated means the stored record changed.
	OutcomeUpdated Outcome = "updated"

	// OutcomeUnchanged means stages ran but nothing new was learned.
	OutcomeUnchanged Outcome = "unchanged"

	// OutcomeSkipped means nothing was written: the date was filtered out,
	// no stage applied, or the run ended before the write.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed means every stage failed or the write failed.
	OutcomeFailed Outcome = "failed"
)

// JobOptions bounds one orchestrator run. Zero values take job defaults.
type JobOptions struct {
	// Days is the rolling window size; dates older than today-Days are ignored.
	Days int

	// Pages limits API pages for the API backfill.
	Pages int

	// Limit caps how many stored records or blobs are scanned.
	Limit int

	// MaxUpserts stops the run after this many updated records.
	MaxUpserts int

	// Force reprocesses dates that already meet the halt condition.
	Force bool

	// ReportOnly lists candidates without fetching (stored-documents sweep).
	ReportOnly bool

	// Timeout bounds the whole run. Zero means no run-level timeout.
	Timeout time.Duration
}

// DateResult is one line of a run report.
type DateResult struct {
	Date     string   `json:"date"`
	Outcome  Outcome  `json:"outcome"`
	Complete bool     `json:"complete"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// RunSummary is the aggregate result every entry point returns.
type RunSummary struct {
	RunID           string        `json:"run_id"`
	Job             JobName       `json:"job"`
	Scanned         int           `json:"scanned"`
	Updated         int           `json:"updated"`
	Completed       int           `json:"completed"`
	SkippedComplete int           `json:"skipped_complete"`
	Failed          int           `json:"failed"`
	Cutoff          string        `json:"cutoff,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	Stopped         string        `json:"stopped,omitempty"`
	Dates           []DateResult  `json:"dates,omitempty"`
}

// Record tallies one date outcome.
func (s *RunSummary) Record(r DateResult) {
	s.Scanned++
	switch r.Outcome {
	case OutcomeAlreadyComplete:
		s.SkippedComplete++
	case OutcomeUpdated:
		s.Updated++
		if r.Complete {
			s.Completed++
		}
	case OutcomeFailed:
		s.Failed++
	}
	s.Dates = append(s.Dates, r)
}
