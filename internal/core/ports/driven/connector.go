package driven

import (
	"context"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// ResultsAPI is the structured results API. It is the highest-trust
// source for prize numbers and the only source for amounts.
type ResultsAPI interface {
	// Latest returns the most recently published draw.
	Latest(ctx context.Context) (*domain.APIDraw, error)

	// ByDate returns the draw for a canonical date.
	ByDate(ctx context.Context, date string) (*domain.APIDraw, error)

	// Page returns one page of past draws, newest first.
	// An empty slice means there are no more pages.
	Page(ctx context.Context, page int) ([]domain.APIDraw, error)
}

// OfficialDocuments downloads result sheets published by the results API.
type OfficialDocuments interface {
	// Download fetches the sheet behind a document URL from the API payload.
	// Fails with domain.ErrNotADocument when the bytes are not a PDF.
	Download(ctx context.Context, documentURL string) (*domain.RawDocument, error)

	// DocumentID returns the identifier Download would assign to documentURL,
	// so callers can tell whether they already hold the sheet.
	DocumentID(documentURL string) string
}

// MirrorDocuments looks up result sheets on a third-party mirror by date.
type MirrorDocuments interface {
	// Fetch returns the first candidate sheet that downloads and is a PDF.
	// Fails with domain.ErrNoCandidateAvailable when none does.
	Fetch(ctx context.Context, date string) (*domain.RawDocument, error)
}

// ResultPages scrapes per-date HTML result pages.
type ResultPages interface {
	// Text returns the page for date as normalised plain text.
	Text(ctx context.Context, date string) (string, error)
}
