// Package webpage scrapes per-date HTML result pages as a last resort
// when no sheet yields the full prize set.
package webpage

import (
	"context"
	"fmt"
	"strings"

	"github.com/vittaya051733-boop/tungtong1/internal/connectors/fetch"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/drawdate"
	"github.com/vittaya051733-boop/tungtong1/internal/normalisers/html"
)

// DefaultBaseURL is the result page root.
const DefaultBaseURL = "https://www.lottery.co.th/lotto"

// Verify interface compliance.
var _ driven.ResultPages = (*Client)(nil)

// Client fetches result pages.
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

// PageURL is the page for date: DD-MM-YY with a two-digit Buddhist year.
func (c *Client) PageURL(date string) (string, error) {
	y, m, d, err := drawdate.Parts(date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%02d-%02d-%02d", c.base, d, m, drawdate.BuddhistYear(y)%100), nil
}

// Text returns the page for date as normalised plain text.
func (c *Client) Text(ctx context.Context, date string) (string, error) {
	url, err := c.PageURL(date)
	if err != nil {
		return "", err
	}
	body, err := c.http.Get(ctx, "result page", url, "text/html,*/*")
	if err != nil {
		return "", err
	}
	return html.ToText(string(body)), nil
}
