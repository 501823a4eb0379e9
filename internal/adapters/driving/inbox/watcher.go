// Package inbox watches a directory for result sheets dropped in by
// operators and ingests each one as an upload.
//
// A file is handled once it has been quiet for the debounce period. It is
// then moved to processed/ or failed/ under the inbox. A file whose ingest
// was interrupted stays in the inbox and is picked up on the next start.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
	"github.com/vittaya051733-boop/tungtong1/internal/drawdate"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// DefaultDebounce coalesces the write bursts of a file copy.
const DefaultDebounce = 2 * time.Second

// Subdirectories that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

var fileDatePattern = regexp.MustCompile(`^(\d{4}-\d{1,2}-\d{1,2})`)

// Watcher feeds new files in a directory to the job service.
type Watcher struct {
	dir      string
	jobs     driving.JobService
	debounce time.Duration
}

// New creates a watcher. A non-positive debounce means DefaultDebounce.
func New(dir string, jobs driving.JobService, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, jobs: jobs, debounce: debounce}
}

// Run ingests files already in the inbox, then watches for new ones until
// ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	for _, sub := range []string{ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return fmt.Errorf("create inbox: %w", err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("inbox: watching %s", w.dir)

	pending := make(map[string]struct{})
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && accepted(e.Name()) {
			pending[filepath.Join(w.dir, e.Name())] = struct{}{}
		}
	}

	timer := time.NewTimer(w.debounce)
	if len(pending) == 0 {
		timer.Stop()
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !accepted(filepath.Base(ev.Name)) {
				continue
			}
			if filepath.Dir(ev.Name) != filepath.Clean(w.dir) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("inbox: watcher error: %v", err)
		case <-timer.C:
			for path := range pending {
				delete(pending, path)
				if ctx.Err() != nil {
					return nil
				}
				w.handle(ctx, path)
			}
		}
	}
}

// handle ingests one file and moves it out of the inbox.
func (w *Watcher) handle(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Warn("inbox: read %s: %v", path, err)
		return
	}

	name := filepath.Base(path)
	upload := domain.Upload{
		Content:  content,
		Date:     dateFromName(name),
		Filename: name,
	}

	dest := ProcessedDir
	sum, err := w.jobs.IngestUpload(ctx, upload)
	if ctx.Err() != nil || interrupted(sum) {
		logger.Info("inbox: %s: interrupted, left for the next run", name)
		return
	}
	switch {
	case err != nil:
		logger.Warn("inbox: %s: %v", name, err)
		dest = FailedDir
	case sum.Failed > 0:
		logger.Warn("inbox: %s: ingest failed", name)
		dest = FailedDir
	default:
		logger.Info("inbox: %s: scanned=%d updated=%d", name, sum.Scanned, sum.Updated)
	}

	if err := os.Rename(path, filepath.Join(w.dir, dest, name)); err != nil {
		logger.Warn("inbox: move %s to %s: %v", name, dest, err)
	}
}

// interrupted reports whether a date was skipped part way through, which
// happens when the run was cancelled after the ingest started.
func interrupted(sum *domain.RunSummary) bool {
	if sum == nil {
		return false
	}
	for _, d := range sum.Dates {
		if d.Outcome == domain.OutcomeSkipped && d.Error != "" {
			return true
		}
	}
	return false
}

func accepted(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), ".pdf")
}

// dateFromName reads a leading YYYY-MM-DD from a file name. Names without
// one leave the date to be detected from the sheet.
func dateFromName(name string) string {
	m := fileDatePattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	date, err := drawdate.Normalize(m[1])
	if err != nil {
		return ""
	}
	return date
}
