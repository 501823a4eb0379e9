package driven

import (
	"context"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// TextExtractor pulls the embedded text layer out of a document.
// Scanned sheets have little or no text layer; OCR covers those.
type TextExtractor interface {
	// Extract returns the raw text of the document.
	Extract(ctx context.Context, raw *domain.RawDocument) (string, error)
}
