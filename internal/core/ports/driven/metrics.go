package driven

import (
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// Metrics receives pipeline observations. Implementations must be safe
// for concurrent use. NopMetrics discards everything.
type Metrics interface {
	// DateProcessed records the outcome of one date in a job.
	DateProcessed(job domain.JobName, outcome domain.Outcome)

	// StageFailed records a failed fetch or parse stage.
	StageFailed(stage string)

	// OCRRequest records an OCR lookup; hit is true when cached output was reused.
	OCRRequest(hit bool)

	// RunFinished records a finished job run.
	RunFinished(job domain.JobName, d time.Duration)
}

// NopMetrics is a Metrics that does nothing.
type NopMetrics struct{}

func (NopMetrics) DateProcessed(domain.JobName, domain.Outcome) {}
func (NopMetrics) StageFailed(string) {}
func (NopMetrics) OCRRequest(bool) {}
func (NopMetrics) RunFinished(domain.JobName, time.Duration) {}
