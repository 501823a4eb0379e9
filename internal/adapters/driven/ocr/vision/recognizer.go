// Package vision implements the Recognizer port with the Cloud Vision
// asynchronous file annotation API. Documents are read from and page
// fragments written to Cloud Storage.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/api/vision/v1"

	"github.com/vittaya051733-boop/tungtong1/internal/connectors/google"
	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// Ensure Recognizer implements the interface.
var _ driven.Recognizer = (*Recognizer)(nil)

const (
	// DefaultPollInterval is how often Await checks the operation.
	DefaultPollInterval = 3 * time.Second

	featureDocumentText = "DOCUMENT_TEXT_DETECTION"

	// pagesPerFragment is the number of pages the service writes per output file.
	pagesPerFragment = 20
)

// Recognizer submits documents to Cloud Vision.
type Recognizer struct {
	svc  *vision.Service
	poll time.Duration
}

// New returns a recognizer. A non-positive poll interval means
// DefaultPollInterval.
func New(svc *vision.Service, poll time.Duration) *Recognizer {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Recognizer{svc: svc, poll: poll}
}

// Submit starts an asynchronous annotation of job.SourceURI.
func (r *Recognizer) Submit(ctx context.Context, job driven.RecognitionJob) (driven.RecognitionHandle, error) {
	if job.SourceURI == "" || job.DestinationURI == "" {
		return driven.RecognitionHandle{}, fmt.Errorf("%w: source and destination are required", domain.ErrInvalidInput)
	}
	mime := job.MIMEType
	if mime == "" {
		mime = "application/pdf"
	}

	req := &vision.AsyncBatchAnnotateFilesRequest{
		Requests: []*vision.AsyncAnnotateFileRequest{{
			InputConfig: &vision.InputConfig{
				GcsSource: &vision.GcsSource{Uri: job.SourceURI},
				MimeType:  mime,
			},
			Features: []*vision.Feature{{Type: featureDocumentText}},
			OutputConfig: &vision.OutputConfig{
				GcsDestination: &vision.GcsDestination{Uri: job.DestinationURI},
				BatchSize:      pagesPerFragment,
			},
		}},
	}

	op, err := r.svc.Files.AsyncBatchAnnotate(req).Context(ctx).Do()
	if err != nil {
		return driven.RecognitionHandle{}, google.WrapError("submit recognition", err)
	}
	logger.Debug("vision: submitted %s for %s", op.Name, job.SourceURI)
	return driven.RecognitionHandle{Name: op.Name}, nil
}

// Await polls the operation until it is done.
func (r *Recognizer) Await(ctx context.Context, handle driven.RecognitionHandle) error {
	if handle.Name == "" {
		return fmt.Errorf("%w: empty operation name", domain.ErrInvalidInput)
	}

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		op, err := r.svc.Operations.Get(handle.Name).Context(ctx).Do()
		if err != nil {
			return google.WrapError("poll recognition", err)
		}
		if op.Done {
			if op.Error != nil {
				return fmt.Errorf("%w: operation %s: %s (code %d)", domain.ErrRecognition, handle.Name, op.Error.Message, op.Error.Code)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DecodeFragment reads the page texts from one output file.
func (r *Recognizer) DecodeFragment(data []byte) ([]string, error) {
	var resp vision.AnnotateFileResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode fragment: %w", domain.ErrRecognition, err)
	}

	texts := make([]string, 0, len(resp.Responses))
	for _, page := range resp.Responses {
		if page == nil {
			continue
		}
		if page.Error != nil && page.Error.Message != "" {
			logger.Warn("vision: page error: %s", page.Error.Message)
			continue
		}
		if page.FullTextAnnotation != nil && page.FullTextAnnotation.Text != "" {
			texts = append(texts, page.FullTextAnnotation.Text)
		}
	}
	return texts, nil
}

