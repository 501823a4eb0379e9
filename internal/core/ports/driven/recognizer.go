package driven

import (
	"context"
)

// RecognitionJob asks for the text of a stored document.
type RecognitionJob struct {
	// SourceURI addresses the document in the blob store.
	SourceURI string

	// DestinationURI is the prefix the service writes page fragments under.
	DestinationURI string

	// MIMEType of the source document.
	MIMEType string
}

// RecognitionHandle identifies a submitted job.
type RecognitionHandle struct {
	Name string
}

// Recognizer is an asynchronous OCR service.
type Recognizer interface {
	// Submit starts a job and returns without waiting for it.
	Submit(ctx context.Context, job RecognitionJob) (RecognitionHandle, error)

	// Await blocks until the job is done. It returns an error when the job
	// failed or ctx ended first.
	Await(ctx context.Context, handle RecognitionHandle) error

	// DecodeFragment returns the page texts held in one output fragment.
	DecodeFragment(data []byte) ([]string, error)
}
