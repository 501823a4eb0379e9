package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDate indicates a date string that does not normalise to a
	// calendar date. Caller error, never retried.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidWindow indicates a job configuration outside its bounds.
	// It aborts a run before any date is processed.
	ErrInvalidWindow = errors.New("invalid job window")

	// Source Errors.

	// ErrNotADocument indicates downloaded bytes lack the PDF magic header.
	ErrNotADocument = errors.New("not a document")

	// ErrNoCandidateAvailable indicates every mirror candidate failed.
	ErrNoCandidateAvailable = errors.New("no candidate available")

	// ErrRecognition indicates the OCR stage failed. The merge continues
	// with whatever was extracted before it.
	ErrRecognition = errors.New("recognition failure")

	// ErrPersistence indicates a record store write failed.
	ErrPersistence = errors.New("persistence failure")

	// ErrStageUnavailable indicates a stage cannot run for a date,
	// for example OCR without a stored document.
	ErrStageUnavailable = errors.New("stage unavailable")
)

// UpstreamHTTPError is returned when a source answers with a non-success status.
type UpstreamHTTPError struct {
	Op         string
	StatusCode int
	URL        string
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%s: upstream returned HTTP %d (%s)", e.Op, e.StatusCode, e.URL)
}

// IsUpstreamStatus reports whether err wraps an UpstreamHTTPError with the given status.
func IsUpstreamStatus(err error, status int) bool {
	var upstream *UpstreamHTTPError
	if errors.As(err, &upstream) {
		return upstream.StatusCode == status
	}
	return false
}
