// Package mirror fetches result sheets from a third-party mirror that
// files them by date.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vittaya051733-boop/tungtong1/internal/connectors/fetch"
	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/drawdate"
	"github.com/vittaya051733-boop/tungtong1/internal/normalisers/pdf"
)

// DefaultBaseURL is the mirror's document root.
const DefaultBaseURL = "https://cdn.lottery.co.th/lotto/pdf"

// IDPrefix namespaces mirror keys in document references.
const IDPrefix = "lotteryco:"

// Verify interface compliance.
var _ driven.MirrorDocuments = (*Client)(nil)

// Candidate is one URL the mirror may serve a date's sheet under.
type Candidate struct {
	URL string
	Key string
}

// Client looks up sheets on the mirror.
type Client struct {
	base string
	http *fetch.Client
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, http *fetch.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if http == nil {
		http = fetch.NewClient(nil, nil)
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: http}
}

// Candidates lists the URLs tried for date, in order. Current sheets use
// YYMMDD with a two-digit Buddhist year; older ones DD-MM-YYYY with the
// full Buddhist year.
func (c *Client) Candidates(date string) ([]Candidate, error) {
	y, m, d, err := drawdate.Parts(date)
	if err != nil {
		return nil, err
	}
	by := drawdate.BuddhistYear(y)
	keys := []string{
		fmt.Sprintf("%02d%02d%02d", by%100, m, d),
		fmt.Sprintf("%02d-%02d-%d", d, m, by),
	}
	out := make([]Candidate, 0, len(keys))
	for _, k := range keys {
		out = append(out, Candidate{URL: c.base + "/" + k + ".pdf", Key: k})
	}
	return out, nil
}

// Fetch returns the first candidate that downloads and is a PDF.
func (c *Client) Fetch(ctx context.Context, date string) (*domain.RawDocument, error) {
	candidates, err := c.Candidates(date)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, cand := range candidates {
		body, err := c.http.Get(ctx, "mirror", cand.URL, "application/pdf,*/*")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}
		if err := pdf.Validate(body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cand.URL, err))
			continue
		}
		return &domain.RawDocument{
			Kind:    domain.ProvenanceMirrorDocument,
			Origin:  cand.URL,
			ID:      IDPrefix + cand.Key,
			Content: body,
		}, nil
	}

	return nil, fmt.Errorf("mirror %s: %w: %w", date, domain.ErrNoCandidateAvailable, errors.Join(errs...))
}
