// Package prometheus exports pipeline observations as Prometheus metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

// Metrics provides observability for the reconciliation jobs.
type Metrics struct {
	// Dates processed by job and outcome
	Dates *prometheus.CounterVec

	// Failed fetch or parse stages
	StageFailures *prometheus.CounterVec

	// OCR lookups by cache result
	OCRRequests *prometheus.CounterVec

	// Whole-run latency by job
	RunDuration *prometheus.HistogramVec
}

// New registers the metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Dates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "drawsync_dates_total",
			Help: "Draw dates processed by job and outcome",
		}, []string{"job", "outcome"}),

		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "drawsync_stage_failures_total",
			Help: "Failed pipeline stages by stage name",
		}, []string{"stage"}),

		OCRRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "drawsync_ocr_requests_total",
			Help: "OCR lookups by result: hit reuses stored output, miss submits a job",
		}, []string{"result"}),

		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "drawsync_run_duration_seconds",
			Help:    "Duration of a job run",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"job"}),
	}
}

// DateProcessed records the outcome of one date.
func (m *Metrics) DateProcessed(job domain.JobName, outcome domain.Outcome) {
	if m != nil {
		m.Dates.WithLabelValues(string(job), string(outcome)).Inc()
	}
}

// StageFailed records a failed stage.
func (m *Metrics) StageFailed(stage string) {
	if m != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// OCRRequest records an OCR cache lookup.
func (m *Metrics) OCRRequest(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.OCRRequests.WithLabelValues(result).Inc()
}

// RunFinished records a run duration.
func (m *Metrics) RunFinished(job domain.JobName, d time.Duration) {
	if m != nil {
		m.RunDuration.WithLabelValues(string(job)).Observe(d.Seconds())
	}
}
