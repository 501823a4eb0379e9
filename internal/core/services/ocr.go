package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// OCROutputRoot is the blob prefix recognition output is written under.
const OCROutputRoot = "lottery_ocr_output/"

const documentMIMEType = "application/pdf"

// DefaultMinOCRText is the shortest OCR output worth parsing, in characters.
const DefaultMinOCRText = 50

// DefaultRecognitionTimeout bounds one recognition job, submit to last fragment.
const DefaultRecognitionTimeout = 15 * time.Minute

// OCRPrefix is the cache key for a document's recognition output.
// The same bytes for the same date always land under the same prefix.
func OCRPrefix(date, sha256 string) string {
	return OCROutputRoot + date + "/" + sha256 + "/"
}

// OCR recognises stored documents and caches the output in the blob store.
type OCR struct {
	blobs      driven.BlobStore
	recognizer driven.Recognizer
	metrics    driven.Metrics
	minText    int
	timeout    time.Duration

	// group collapses concurrent requests for one prefix into one job.
	group singleflight.Group
}

// NewOCR creates the OCR service. A non-positive minText uses DefaultMinOCRText.
func NewOCR(blobs driven.BlobStore, recognizer driven.Recognizer, metrics driven.Metrics, minText int) *OCR {
	if metrics == nil {
		metrics = driven.NopMetrics{}
	}
	if minText <= 0 {
		minText = DefaultMinOCRText
	}
	return &OCR{
		blobs:      blobs,
		recognizer: recognizer,
		metrics:    metrics,
		minText:    minText,
		timeout:    DefaultRecognitionTimeout,
	}
}

// Text returns the recognised text of a stored document. A job is only
// submitted when nothing exists under the document's output prefix.
func (o *OCR) Text(ctx context.Context, date string, doc *domain.DocumentRef) (string, error) {
	if doc == nil || doc.BlobPath == "" || doc.SHA256 == "" {
		return "", fmt.Errorf("ocr %s: %w: no stored document", date, domain.ErrStageUnavailable)
	}

	prefix := OCRPrefix(date, doc.SHA256)
	ch := o.group.DoChan(prefix, func() (any, error) {
		// Shared by every caller waiting on prefix, so no one caller's
		// cancellation ends it.
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
		defer cancel()
		return o.recognise(jobCtx, prefix, doc)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %s: %w", domain.ErrRecognition, prefix, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (o *OCR) recognise(ctx context.Context, prefix string, doc *domain.DocumentRef) (string, error) {
	fragments, err := o.fragments(ctx, prefix)
	if err != nil {
		return "", err
	}

	if len(fragments) > 0 {
		o.metrics.OCRRequest(true)
		logger.Debug("ocr: reusing %d fragments under %s", len(fragments), prefix)
	} else {
		o.metrics.OCRRequest(false)
		handle, err := o.recognizer.Submit(ctx, driven.RecognitionJob{
			SourceURI:      o.blobs.URI(doc.BlobPath),
			DestinationURI: o.blobs.URI(prefix),
			MIMEType:       documentMIMEType,
		})
		if err != nil {
			return "", fmt.Errorf("%w: submit %s: %w", domain.ErrRecognition, doc.BlobPath, err)
		}
		logger.Info("ocr: submitted %s for %s", handle.Name, doc.BlobPath)

		if err := o.recognizer.Await(ctx, handle); err != nil {
			return "", fmt.Errorf("%w: await %s: %w", domain.ErrRecognition, handle.Name, err)
		}
		if fragments, err = o.fragments(ctx, prefix); err != nil {
			return "", err
		}
		if len(fragments) == 0 {
			return "", fmt.Errorf("%w: no output under %s", domain.ErrRecognition, prefix)
		}
	}

	var b strings.Builder
	for _, f := range fragments {
		data, err := o.blobs.Get(ctx, f.Path)
		if err != nil {
			return "", fmt.Errorf("%w: read %s: %w", domain.ErrRecognition, f.Path, err)
		}
		pages, err := o.recognizer.DecodeFragment(data)
		if err != nil {
			return "", fmt.Errorf("%w: decode %s: %w", domain.ErrRecognition, f.Path, err)
		}
		for _, p := range pages {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(p)
		}
	}

	text := b.String()
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n <= o.minText {
		return "", fmt.Errorf("%w: only %d characters under %s", domain.ErrRecognition, n, prefix)
	}
	return text, nil
}

// fragments lists output files under prefix in page order.
func (o *OCR) fragments(ctx context.Context, prefix string) ([]driven.BlobInfo, error) {
	infos, err := o.blobs.List(ctx, prefix, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrRecognition, prefix, err)
	}
	out := make([]driven.BlobInfo, 0, len(infos))
	for _, info := range infos {
		if strings.HasSuffix(info.Path, ".json") {
			out = append(out, info)
		}
	}
	slices.SortFunc(out, func(a, b driven.BlobInfo) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out, nil
}
