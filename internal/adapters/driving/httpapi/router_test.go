package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
)

// Ensure stubJobs implements the interface.
var _ driving.JobService = (*stubJobs)(nil)

// stubJobs records calls and returns canned results.
type stubJobs struct {
	draw *domain.DrawRecord
	err  error

	job    domain.JobName
	opts   domain.JobOptions
	date   string
	force  bool
	upload domain.Upload
}

func (s *stubJobs) summary(job domain.JobName) (*domain.RunSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.RunSummary{RunID: "run-1", Job: job, Scanned: 1}, nil
}

func (s *stubJobs) Run(_ context.Context, job domain.JobName, opts domain.JobOptions) (*domain.RunSummary, error) {
	s.job, s.opts = job, opts
	return s.summary(job)
}

func (s *stubJobs) LiveSync(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return s.Run(ctx, domain.JobLiveSync, o)
}

func (s *stubJobs) BackfillFromAPI(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return s.Run(ctx, domain.JobAPIBackfill, o)
}

func (s *stubJobs) BackfillDocuments(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return s.Run(ctx, domain.JobDocumentBackfill, o)
}

func (s *stubJobs) Repair(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return s.Run(ctx, domain.JobRepair, o)
}

func (s *stubJobs) CompleteFromStored(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return s.Run(ctx, domain.JobStoredDocuments, o)
}

func (s *stubJobs) RepairDate(_ context.Context, date string, force bool) (*domain.RunSummary, error) {
	s.date, s.force = date, force
	return s.summary(domain.JobRepairDate)
}

func (s *stubJobs) IngestUpload(_ context.Context, upload domain.Upload) (*domain.RunSummary, error) {
	s.upload = upload
	return s.summary(domain.JobUpload)
}

func (s *stubJobs) Draw(_ context.Context, date string) (*domain.DrawRecord, error) {
	s.date = date
	if s.err != nil {
		return nil, s.err
	}
	return s.draw, nil
}

func serve(t *testing.T, h *Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(t, New(&stubJobs{}, nil), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("drawsync_dates_total 1\n"))
	})
	rec := serve(t, New(&stubJobs{}, metrics), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "drawsync_dates_total")

	rec = serve(t, New(&stubJobs{}, nil), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunJob(t *testing.T) {
	jobs := &stubJobs{}
	body := `{"days":30,"pages":2,"max_upserts":5,"force":true,"timeout":"90s"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs/api-backfill", strings.NewReader(body))

	rec := serve(t, New(jobs, nil), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.JobAPIBackfill, jobs.job)
	assert.Equal(t, domain.JobOptions{Days: 30, Pages: 2, MaxUpserts: 5, Force: true, Timeout: 90 * time.Second}, jobs.opts)

	var sum domain.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "run-1", sum.RunID)
}

func TestRunJob_EmptyBody(t *testing.T) {
	jobs := &stubJobs{}
	rec := serve(t, New(jobs, nil), httptest.NewRequest(http.MethodPost, "/jobs/live-sync", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.JobOptions{}, jobs.opts)
}

func TestRunJob_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad json", "{", nil, http.StatusBadRequest},
		{"bad timeout", `{"timeout":"soon"}`, nil, http.StatusBadRequest},
		{"bad window", `{}`, domain.ErrInvalidWindow, http.StatusBadRequest},
		{"unknown job", `{}`, domain.ErrInvalidInput, http.StatusBadRequest},
		{"internal", `{}`, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/jobs/live-sync", strings.NewReader(tc.body))
			rec := serve(t, New(&stubJobs{err: tc.err}, nil), req)
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestGetDraw(t *testing.T) {
	jobs := &stubJobs{draw: &domain.DrawRecord{
		Date:        "2024-06-16",
		Source:      domain.ProvenanceAPI,
		Prizes:      domain.Prizes{domain.CategoryFirst: {"730209"}},
		Diagnostics: domain.Diagnostics{Warnings: []string{"missing_last2"}},
	}}
	rec := serve(t, New(jobs, nil), httptest.NewRequest(http.MethodGet, "/draws/2024-06-16", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-06-16", jobs.date)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "api", out["source"])
	assert.Equal(t, []any{"730209"}, out["prizes"].(map[string]any)["first"])

	rec = serve(t, New(&stubJobs{err: domain.ErrNotFound}, nil), httptest.NewRequest(http.MethodGet, "/draws/2024-06-16", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, New(&stubJobs{err: domain.ErrInvalidDate}, nil), httptest.NewRequest(http.MethodGet, "/draws/16-06-2024", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRepairDraw(t *testing.T) {
	jobs := &stubJobs{}
	rec := serve(t, New(jobs, nil), httptest.NewRequest(http.MethodPost, "/draws/2024-06-16/repair?force=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-06-16", jobs.date)
	assert.True(t, jobs.force)

	rec = serve(t, New(jobs, nil), httptest.NewRequest(http.MethodPost, "/draws/2024-06-16/repair?force=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_Raw(t *testing.T) {
	jobs := &stubJobs{}
	req := httptest.NewRequest(http.MethodPost, "/uploads?date=2024-06-16&filename=sheet.pdf&force=1", bytes.NewReader([]byte("%PDF-1.4 sheet")))
	req.Header.Set("Content-Type", "application/pdf")

	rec := serve(t, New(jobs, nil), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("%PDF-1.4 sheet"), jobs.upload.Content)
	assert.Equal(t, "2024-06-16", jobs.upload.Date)
	assert.Equal(t, "sheet.pdf", jobs.upload.Filename)
	assert.True(t, jobs.upload.Force)
}

func TestUpload_JSON(t *testing.T) {
	jobs := &stubJobs{}
	content := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 sheet"))
	body, err := json.Marshal(map[string]any{"content": content, "start": "2024-06-01", "end": "2024-06-30"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	rec := serve(t, New(jobs, nil), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []byte("%PDF-1.4 sheet"), jobs.upload.Content)
	assert.Equal(t, "2024-06-01", jobs.upload.Start)
	assert.Equal(t, "2024-06-30", jobs.upload.End)
	assert.Empty(t, jobs.upload.Date)
}

func TestUpload_Rejects(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader(`{"content":"%%%"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(t, New(&stubJobs{}, nil), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader("not a pdf"))
	rec = serve(t, New(&stubJobs{err: domain.ErrNotADocument}, nil), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	jobs := &stubJobs{}
	oversized := make([]byte, MaxUploadSize+1)
	copy(oversized, "%PDF-1.4 ")

	req := httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewReader(oversized))
	req.Header.Set("Content-Type", "application/pdf")
	rec := serve(t, New(jobs, nil), req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	body := append([]byte(`{"content":"`), bytes.Repeat([]byte("A"), MaxUploadSize)...)
	req = httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewReader(append(body, `"}`...)))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(t, New(jobs, nil), req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	assert.Nil(t, jobs.upload.Content, "oversized uploads never reach the job service")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: read body: %w", domain.ErrInvalidInput, &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInvalidDate, http.StatusBadRequest},
		{domain.ErrNotADocument, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusFor(tc.err), "%v", tc.err)
	}
}
