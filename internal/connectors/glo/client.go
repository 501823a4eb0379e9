package glo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vittaya051733-boop/tungtong1/internal/connectors/fetch"
	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/drawdate"
	"github.com/vittaya051733-boop/tungtong1/internal/normalisers/pdf"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://www.glo.or.th/api/lottery"

// Verify interface compliance.
var (
	_ driven.ResultsAPI        = (*Client)(nil)
	_ driven.OfficialDocuments = (*Client)(nil)
)

// Client talks to the results API.
type Client struct {
	base   string
	http   *fetch.Client
	schema domain.Schema
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, http *fetch.Client, schema domain.Schema) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if http == nil {
		http = fetch.NewClient(nil, nil)
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: http, schema: schema}
}

// Latest returns the most recently published draw.
func (c *Client) Latest(ctx context.Context) (*domain.APIDraw, error) {
	var env envelope[resultResponse]
	if err := c.post(ctx, "getLatestLottery", struct{}{}, &env); err != nil {
		return nil, err
	}
	return c.toDraw("getLatestLottery", env.Response, "")
}

// ByDate returns the draw for a canonical date.
func (c *Client) ByDate(ctx context.Context, date string) (*domain.APIDraw, error) {
	y, m, d, err := drawdate.Parts(date)
	if err != nil {
		return nil, err
	}
	body := map[string]string{
		"date":  fmt.Sprintf("%02d", d),
		"month": fmt.Sprintf("%02d", m),
		"year":  fmt.Sprintf("%04d", y),
	}
	var env envelope[resultResponse]
	if err := c.post(ctx, "getLotteryResult", body, &env); err != nil {
		return nil, err
	}
	return c.toDraw("getLotteryResult", env.Response, date)
}

// Page returns one page of past draws, newest first. Entries with an
// unreadable date are dropped.
func (c *Client) Page(ctx context.Context, page int) ([]domain.APIDraw, error) {
	var env envelope[pageResponse]
	if err := c.post(ctx, "getLotteryResultByPage", map[string]int{"page": page}, &env); err != nil {
		return nil, err
	}
	if env.Response == nil {
		return nil, nil
	}

	out := make([]domain.APIDraw, 0, len(env.Response.Lottery))
	for _, item := range env.Response.Lottery {
		date, err := drawdate.Normalize(item.Date)
		if err != nil {
			continue
		}
		draw := domain.APIDraw{Date: date, Prizes: domain.Prizes{}}
		if item.Data != nil {
			draw.Prizes = item.Data.prizes()
		}
		out = append(out, draw)
	}
	return out, nil
}

// Download fetches an official sheet. The API serves it base64 encoded,
// keyed by the last path segment of the document URL.
func (c *Client) Download(ctx context.Context, documentURL string) (*domain.RawDocument, error) {
	id := c.DocumentID(documentURL)
	if id == "" {
		return nil, fmt.Errorf("getPdfReader: %w: empty document id in %q", domain.ErrInvalidInput, documentURL)
	}

	body, err := c.http.PostJSON(ctx, "getPdfReader", c.base+"/getPdfReader", map[string]string{"url": id})
	if err != nil {
		return nil, err
	}
	encoded := strings.TrimSpace(string(body))
	if encoded == "" {
		return nil, fmt.Errorf("getPdfReader: %w: empty response", domain.ErrNotADocument)
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("getPdfReader: %w: %v", domain.ErrNotADocument, err)
	}
	if err := pdf.Validate(content); err != nil {
		return nil, fmt.Errorf("getPdfReader: %w", err)
	}

	return &domain.RawDocument{
		Kind:    domain.ProvenanceOfficialDocument,
		Origin:  documentURL,
		ID:      id,
		Content: content,
	}, nil
}

// DocumentID is the last non-empty path segment of a document URL.
func (c *Client) DocumentID(documentURL string) string {
	parts := strings.FieldsFunc(strings.TrimSpace(documentURL), func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func (c *Client) post(ctx context.Context, op string, body, out any) error {
	raw, err := c.http.PostJSON(ctx, op, c.base+"/"+op, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) toDraw(op string, resp *resultResponse, fallbackDate string) (*domain.APIDraw, error) {
	if resp == nil {
		return nil, fmt.Errorf("%s: %w: empty response", op, domain.ErrNotFound)
	}

	raw := resp.Date
	if strings.TrimSpace(raw) == "" {
		raw = fallbackDate
	}
	date, err := drawdate.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	draw := &domain.APIDraw{
		Date:        date,
		DocumentURL: strings.TrimSpace(resp.PDFURL),
		Prizes:      domain.Prizes{},
	}
	if resp.Data != nil {
		draw.Prizes = resp.Data.prizes()
		draw.Amounts = resp.Data.amounts(c.schema)
	}
	return draw, nil
}
