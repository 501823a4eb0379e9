package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vittaya051733-boop/tungtong1/internal/adapters/driven/storage/memory"
	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
)

// --- Fakes for the pipeline ---

type fakeAPI struct {
	mu         sync.Mutex
	latest     *domain.APIDraw
	latestErr  error
	byDate     map[string]*domain.APIDraw
	pages      [][]domain.APIDraw
	byDateHits int
	pageHits   int
}

func (f *fakeAPI) Latest(_ context.Context) (*domain.APIDraw, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	d := *f.latest
	return &d, nil
}

func (f *fakeAPI) ByDate(_ context.Context, date string) (*domain.APIDraw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byDateHits++
	d, ok := f.byDate[date]
	if !ok {
		return nil, &domain.UpstreamHTTPError{Op: "getLotteryResult", StatusCode: 404, URL: "fake"}
	}
	out := *d
	return &out, nil
}

func (f *fakeAPI) Page(_ context.Context, page int) ([]domain.APIDraw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageHits++
	if page-1 < len(f.pages) {
		return f.pages[page-1], nil
	}
	return nil, nil
}

type fakeOfficial struct {
	docs      map[string][]byte
	downloads int
}

func (f *fakeOfficial) Download(_ context.Context, url string) (*domain.RawDocument, error) {
	f.downloads++
	content, ok := f.docs[url]
	if !ok {
		return nil, fmt.Errorf("getPdfReader: %w", domain.ErrNotADocument)
	}
	return &domain.RawDocument{
		Kind:    domain.ProvenanceOfficialDocument,
		Origin:  url,
		ID:      f.DocumentID(url),
		Content: content,
	}, nil
}

func (f *fakeOfficial) DocumentID(url string) string {
	return path.Base(url)
}

type fakeMirror struct {
	docs  map[string][]byte
	calls int
}

func (f *fakeMirror) Fetch(_ context.Context, date string) (*domain.RawDocument, error) {
	f.calls++
	content, ok := f.docs[date]
	if !ok {
		return nil, fmt.Errorf("mirror %s: %w", date, domain.ErrNoCandidateAvailable)
	}
	return &domain.RawDocument{
		Kind:    domain.ProvenanceMirrorDocument,
		Origin:  "https://mirror.example/" + date + ".pdf",
		ID:      "lotteryco:" + strings.ReplaceAll(date, "-", ""),
		Content: content,
	}, nil
}

type fakePages struct {
	texts map[string]string
	calls int
}

func (f *fakePages) Text(_ context.Context, date string) (string, error) {
	f.calls++
	text, ok := f.texts[date]
	if !ok {
		return "", &domain.UpstreamHTTPError{Op: "result page", StatusCode: 404, URL: date}
	}
	return text, nil
}

// fakeText maps document bytes to their text layer.
type fakeText struct {
	texts map[string]string
}

func (f *fakeText) Extract(_ context.Context, raw *domain.RawDocument) (string, error) {
	return f.texts[string(raw.Content)], nil
}

// fakeRecognizer writes one output fragment per job into the blob store.
type fakeRecognizer struct {
	blobs *memory.BlobStore

	mu        sync.Mutex
	outputs   map[string]string // source URI -> recognised text
	jobs      map[string]driven.RecognitionJob
	submits   int
	submitErr error

	// release, when set, holds Await until it is closed.
	release chan struct{}
}

func newFakeRecognizer(blobs *memory.BlobStore) *fakeRecognizer {
	return &fakeRecognizer{
		blobs:   blobs,
		outputs: make(map[string]string),
		jobs:    make(map[string]driven.RecognitionJob),
	}
}

func (f *fakeRecognizer) Submit(_ context.Context, job driven.RecognitionJob) (driven.RecognitionHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return driven.RecognitionHandle{}, f.submitErr
	}
	f.submits++
	name := fmt.Sprintf("operations/%d", f.submits)
	f.jobs[name] = job
	return driven.RecognitionHandle{Name: name}, nil
}

func (f *fakeRecognizer) Await(ctx context.Context, h driven.RecognitionHandle) error {
	f.mu.Lock()
	job := f.jobs[h.Name]
	text := f.outputs[job.SourceURI]
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	// Give concurrent callers a chance to pile up behind this job.
	time.Sleep(10 * time.Millisecond)

	prefix := strings.TrimPrefix(job.DestinationURI, "mem://")
	return f.blobs.Put(ctx, prefix+"output-1-to-1.json", []byte(text), "application/json", nil)
}

func (f *fakeRecognizer) DecodeFragment(data []byte) ([]string, error) {
	return []string{string(data)}, nil
}

func (f *fakeRecognizer) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

// recordingMetrics counts observations.
type recordingMetrics struct {
	mu        sync.Mutex
	outcomes  map[domain.Outcome]int
	stages    map[string]int
	ocrHits   int
	ocrMisses int
	runs      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: map[domain.Outcome]int{}, stages: map[string]int{}}
}

func (m *recordingMetrics) DateProcessed(_ domain.JobName, o domain.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[o]++
}

func (m *recordingMetrics) StageFailed(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[stage]++
}

func (m *recordingMetrics) OCRRequest(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.ocrHits++
	} else {
		m.ocrMisses++
	}
}

func (m *recordingMetrics) RunFinished(domain.JobName, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
}

// failingStore fails every write.
type failingStore struct {
	*memory.DrawStore
}

func (failingStore) Upsert(context.Context, *domain.DrawRecord) (*domain.DrawRecord, bool, error) {
	return nil, false, fmt.Errorf("disk full")
}

var (
	_ driven.ResultsAPI        = (*fakeAPI)(nil)
	_ driven.OfficialDocuments = (*fakeOfficial)(nil)
	_ driven.MirrorDocuments   = (*fakeMirror)(nil)
	_ driven.ResultPages       = (*fakePages)(nil)
	_ driven.TextExtractor     = (*fakeText)(nil)
	_ driven.Recognizer        = (*fakeRecognizer)(nil)
	_ driven.Metrics           = (*recordingMetrics)(nil)
)

// --- Fixtures ---

var testNow = time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)

// fullSheet is a sheet text layer the parser reads as a full prize set.
func fullSheet() string {
	numbers := func(prefix, count int) string {
		parts := make([]string, count)
		for i := range parts {
			parts[i] = fmt.Sprintf("%d%05d", prefix, i+1)
		}
		return strings.Join(parts, " ")
	}

	var b strings.Builder
	b.WriteString("ผลการออกรางวัลสลากกินแบ่งรัฐบาล\n")
	b.WriteString("งวดวันที่ 16 มิถุนายน 2567\n\n")
	b.WriteString("รางวัลที่ 1\n123456\n")
	b.WriteString("เลขหน้า 3 ตัว\n111 222\n")
	b.WriteString("เลขท้าย 3 ตัว\n333 444\n")
	b.WriteString("เลขท้าย 2 ตัว\n55\n")
	b.WriteString("รางวัลข้างเคียงรางวัลที่ 1\n123455 123457\n")
	for _, tc := range []struct{ tier, count int }{{2, 5}, {3, 10}, {4, 50}, {5, 100}} {
		fmt.Fprintf(&b, "รางวัลที่ %d\n%s\n", tc.tier, numbers(tc.tier, tc.count))
	}
	return b.String()
}

// scannedSheet is the text layer of an image-only sheet.
const scannedSheet = "ผลการออกรางวัลสลากกินแบ่งรัฐบาล งวดวันที่ 16 มิถุนายน 2567"

func fullAmounts() domain.Amounts {
	return domain.Amounts{
		domain.AmountFirst:  6000000,
		domain.AmountNear1:  100000,
		domain.AmountSecond: 200000,
		domain.AmountThird:  80000,
		domain.AmountFourth: 40000,
		domain.AmountFifth:  20000,
		domain.AmountLast3:  4000,
		domain.AmountLast3F: 4000,
		domain.AmountLast2:  2000,
	}
}

func pdfBytes(name string) []byte {
	return []byte("%PDF-1.4 " + name)
}

// harness wires the job service to fakes and memory stores.
type harness struct {
	store      *memory.DrawStore
	blobs      *memory.BlobStore
	api        *fakeAPI
	official   *fakeOfficial
	mirror     *fakeMirror
	pages      *fakePages
	text       *fakeText
	recognizer *fakeRecognizer
	metrics    *recordingMetrics
	cfg        Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return testNow }

	blobs := memory.NewBlobStore()
	return &harness{
		store:      memory.NewDrawStore(cfg.Schema),
		blobs:      blobs,
		api:        &fakeAPI{byDate: map[string]*domain.APIDraw{}},
		official:   &fakeOfficial{docs: map[string][]byte{}},
		mirror:     &fakeMirror{docs: map[string][]byte{}},
		pages:      &fakePages{texts: map[string]string{}},
		text:       &fakeText{texts: map[string]string{}},
		recognizer: newFakeRecognizer(blobs),
		metrics:    newRecordingMetrics(),
		cfg:        cfg,
	}
}

func (h *harness) service() *JobService {
	return h.serviceWithStore(h.store)
}

func (h *harness) serviceWithStore(store driven.DrawStore) *JobService {
	ocr := NewOCR(h.blobs, h.recognizer, h.metrics, 0)
	docs := NewDocumentReader(h.cfg.Schema, h.blobs, h.text, ocr, h.metrics)
	return NewJobService(h.cfg, store, h.blobs, Sources{
		API:      h.api,
		Official: h.official,
		Mirror:   h.mirror,
		Pages:    h.pages,
	}, docs, h.metrics)
}

// seed stores a record directly.
func (h *harness) seed(t *testing.T, rec *domain.DrawRecord) {
	t.Helper()
	if _, _, err := h.store.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("seed %s: %v", rec.Date, err)
	}
}
