package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
)

// Ensure stubJobs implements the interface.
var _ driving.JobService = (*stubJobs)(nil)

// stubJobs records uploads. Only IngestUpload is exercised.
type stubJobs struct {
	driving.JobService

	mu      sync.Mutex
	uploads []domain.Upload
	err     error
	failed  int
	summary *domain.RunSummary
}

func (s *stubJobs) IngestUpload(_ context.Context, upload domain.Upload) (*domain.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, upload)
	if s.err != nil {
		return nil, s.err
	}
	if s.summary != nil {
		return s.summary, nil
	}
	return &domain.RunSummary{Job: domain.JobUpload, Scanned: 1, Failed: s.failed}, nil
}

func (s *stubJobs) received() []domain.Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Upload(nil), s.uploads...)
}

func startWatcher(t *testing.T, dir string, jobs *stubJobs) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(dir, jobs, 20*time.Millisecond).Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func TestWatcher_IngestsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2567-06-16 sheet.pdf"), []byte("%PDF-1.4 a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644))

	jobs := &stubJobs{}
	startWatcher(t, dir, jobs)

	require.Eventually(t, func() bool { return len(jobs.received()) == 1 }, 2*time.Second, 10*time.Millisecond)
	up := jobs.received()[0]
	assert.Equal(t, "2024-06-16", up.Date)
	assert.Equal(t, "2567-06-16 sheet.pdf", up.Filename)
	assert.Equal(t, []byte("%PDF-1.4 a"), up.Content)

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, ProcessedDir, "2567-06-16 sheet.pdf"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestWatcher_IngestsNewFiles(t *testing.T) {
	dir := t.TempDir()
	jobs := &stubJobs{}
	startWatcher(t, dir, jobs)

	// Give the watcher time to register before writing.
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, ProcessedDir))
		return err == nil
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.PDF"), []byte("%PDF-1.4 b"), 0o644))

	require.Eventually(t, func() bool { return len(jobs.received()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, jobs.received()[0].Date)
}

func TestWatcher_FailedUploadsAreSetAside(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("nope"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-06-01.pdf"), []byte("nope"), 0o644))

	jobs := &stubJobs{err: errors.New("not a document")}
	startWatcher(t, dir, jobs)

	require.Eventually(t, func() bool {
		_, err1 := os.Stat(filepath.Join(dir, FailedDir, "bad.pdf"))
		_, err2 := os.Stat(filepath.Join(dir, FailedDir, "2024-06-01.pdf"))
		return err1 == nil && err2 == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_Handle_InterruptedIngestStaysInInbox(t *testing.T) {
	tests := []struct {
		name   string
		jobs   *stubJobs
		cancel bool
	}{
		{
			name:   "context cancelled",
			jobs:   &stubJobs{err: context.Canceled},
			cancel: true,
		},
		{
			name: "date skipped mid-run",
			jobs: &stubJobs{summary: &domain.RunSummary{
				Job:     domain.JobUpload,
				Scanned: 1,
				Dates: []domain.DateResult{{
					Date: "2024-06-16", Outcome: domain.OutcomeSkipped, Error: "interrupted: context deadline exceeded",
				}},
			}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, sub := range []string{ProcessedDir, FailedDir} {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
			}
			path := filepath.Join(dir, "2024-06-16.pdf")
			require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 a"), 0o644))

			ctx, cancel := context.WithCancel(context.Background())
			if tc.cancel {
				cancel()
			} else {
				defer cancel()
			}
			New(dir, tc.jobs, 0).handle(ctx, path)

			assert.Len(t, tc.jobs.received(), 1)
			assert.FileExists(t, path)
			assert.NoFileExists(t, filepath.Join(dir, ProcessedDir, "2024-06-16.pdf"))
			assert.NoFileExists(t, filepath.Join(dir, FailedDir, "2024-06-16.pdf"))
		})
	}
}

func TestWatcher_Handle_SkippedWithoutErrorIsProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ProcessedDir), 0o755))
	path := filepath.Join(dir, "2024-06-16.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 a"), 0o644))

	jobs := &stubJobs{summary: &domain.RunSummary{
		Job:     domain.JobUpload,
		Scanned: 1,
		Dates:   []domain.DateResult{{Date: "2024-06-16", Outcome: domain.OutcomeSkipped}},
	}}
	New(dir, jobs, 0).handle(context.Background(), path)

	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, ProcessedDir, "2024-06-16.pdf"))
}

func TestDateFromName(t *testing.T) {
	assert.Equal(t, "2024-06-16", dateFromName("2024-06-16.pdf"))
	assert.Equal(t, "2024-06-01", dateFromName("2024-6-1_upload.pdf"))
	assert.Equal(t, "2024-06-16", dateFromName("2567-06-16.pdf"))
	assert.Empty(t, dateFromName("2024-13-01.pdf"))
	assert.Empty(t, dateFromName("sheet.pdf"))
}

func TestAccepted(t *testing.T) {
	assert.True(t, accepted("a.pdf"))
	assert.True(t, accepted("a.PDF"))
	assert.False(t, accepted(".a.pdf"))
	assert.False(t, accepted("a.pdf.part"))
}
