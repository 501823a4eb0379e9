// Package httpapi exposes job triggers and draw records over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// MaxUploadSize caps uploaded sheets.
const MaxUploadSize = 32 << 20

// Handler serves the trigger API.
type Handler struct {
	jobs    driving.JobService
	metrics http.Handler
}

// New creates a handler. metrics may be nil to leave /metrics unrouted.
func New(jobs driving.JobService, metrics http.Handler) *Handler {
	return &Handler{jobs: jobs, metrics: metrics}
}

// Router returns the routes.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Post("/jobs/{job}", h.handleRunJob)
	r.Get("/draws/{date}", h.handleGetDraw)
	r.Post("/draws/{date}/repair", h.handleRepairDraw)
	r.Post("/uploads", h.handleUpload)
	return r
}

// jobRequest is the optional body of POST /jobs/{job}.
type jobRequest struct {
	Days       int    `json:"days"`
	Pages      int    `json:"pages"`
	Limit      int    `json:"limit"`
	MaxUpserts int    `json:"max_upserts"`
	Force      bool   `json:"force"`
	ReportOnly bool   `json:"report_only"`
	Timeout    string `json:"timeout"`
}

func (req jobRequest) options() (domain.JobOptions, error) {
	opts := domain.JobOptions{
		Days:       req.Days,
		Pages:      req.Pages,
		Limit:      req.Limit,
		MaxUpserts: req.MaxUpserts,
		Force:      req.Force,
		ReportOnly: req.ReportOnly,
	}
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil {
			return opts, fmt.Errorf("%w: timeout: %v", domain.ErrInvalidWindow, err)
		}
		opts.Timeout = d
	}
	return opts, nil
}

// uploadRequest is the JSON form of POST /uploads.
type uploadRequest struct {
	// Content is base64 or a data URL.
	Content  string `json:"content"`
	Date     string `json:"date"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Filename string `json:"filename"`
	Force    bool   `json:"force"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRunJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, fmt.Errorf("%w: invalid request body: %w", domain.ErrInvalidInput, err))
			return
		}
	}
	opts, err := req.options()
	if err != nil {
		writeError(w, err)
		return
	}

	job := domain.JobName(chi.URLParam(r, "job"))
	sum, err := h.jobs.Run(r.Context(), job, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Info("http: %s run %s scanned=%d updated=%d", job, sum.RunID, sum.Scanned, sum.Updated)
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) handleGetDraw(w http.ResponseWriter, r *http.Request) {
	rec, err := h.jobs.Draw(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleRepairDraw(w http.ResponseWriter, r *http.Request) {
	force, err := boolParam(r, "force")
	if err != nil {
		writeError(w, err)
		return
	}
	sum, err := h.jobs.RepairDate(r.Context(), chi.URLParam(r, "date"), force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleUpload accepts a JSON body carrying base64 content, or the raw
// document with date, start, end, filename and force as query parameters.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	upload, err := readUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sum, err := h.jobs.IngestUpload(r.Context(), upload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func readUpload(r *http.Request) (domain.Upload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return domain.Upload{}, fmt.Errorf("%w: invalid request body: %w", domain.ErrInvalidInput, err)
		}
		content, err := domain.DecodeUpload(req.Content)
		if err != nil {
			return domain.Upload{}, err
		}
		return domain.Upload{
			Content:  content,
			Date:     req.Date,
			Start:    req.Start,
			End:      req.End,
			Filename: req.Filename,
			Force:    req.Force,
		}, nil
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("%w: read body: %w", domain.ErrInvalidInput, err)
	}
	force, err := boolParam(r, "force")
	if err != nil {
		return domain.Upload{}, err
	}
	q := r.URL.Query()
	return domain.Upload{
		Content:  content,
		Date:     q.Get("date"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Filename: q.Get("filename"),
		Force:    force,
	}, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", domain.ErrInvalidInput, name)
	}
	return b, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrNotADocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("http: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("http: encode response: %v", err)
	}
}
