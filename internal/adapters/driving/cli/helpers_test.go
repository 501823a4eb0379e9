package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driving"
)

// Ensure mockJobService implements the interface.
var _ driving.JobService = (*mockJobService)(nil)

// mockJobService records the last call.
type mockJobService struct {
	mu sync.Mutex

	draw    *domain.DrawRecord
	summary *domain.RunSummary
	err     error

	job    domain.JobName
	opts   domain.JobOptions
	date   string
	force  bool
	upload domain.Upload
}

func (m *mockJobService) result(job domain.JobName) (*domain.RunSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &domain.RunSummary{RunID: "run-1", Job: job}, nil
}

func (m *mockJobService) Run(_ context.Context, job domain.JobName, opts domain.JobOptions) (*domain.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.job, m.opts = job, opts
	return m.result(job)
}

func (m *mockJobService) LiveSync(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return m.Run(ctx, domain.JobLiveSync, o)
}

func (m *mockJobService) BackfillFromAPI(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return m.Run(ctx, domain.JobAPIBackfill, o)
}

func (m *mockJobService) BackfillDocuments(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return m.Run(ctx, domain.JobDocumentBackfill, o)
}

func (m *mockJobService) Repair(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return m.Run(ctx, domain.JobRepair, o)
}

func (m *mockJobService) CompleteFromStored(ctx context.Context, o domain.JobOptions) (*domain.RunSummary, error) {
	return m.Run(ctx, domain.JobStoredDocuments, o)
}

func (m *mockJobService) RepairDate(_ context.Context, date string, force bool) (*domain.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.date, m.force = date, force
	return m.result(domain.JobRepairDate)
}

func (m *mockJobService) IngestUpload(_ context.Context, upload domain.Upload) (*domain.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upload = upload
	return m.result(domain.JobUpload)
}

func (m *mockJobService) Draw(_ context.Context, date string) (*domain.DrawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.date = date
	if m.err != nil {
		return nil, m.err
	}
	if m.draw == nil {
		return nil, domain.ErrNotFound
	}
	return m.draw, nil
}

// withServices swaps the package services and returns a restore func.
func withServices(s *Services) func() {
	old := services
	services = s
	return func() { services = old }
}

// withTerminal makes output look like a terminal or not.
func withTerminal(tty bool) func() {
	old := isTerminal
	isTerminal = func(io.Writer) bool { return tty }
	return func() { isTerminal = old }
}

// resetFlags clears values left by earlier executions of the shared tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the command tree with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
