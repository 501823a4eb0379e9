package cli

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

func TestIngestCmd_File(t *testing.T) {
	jobs := &mockJobService{}
	defer withServices(&Services{Jobs: jobs})()

	path := filepath.Join(t.TempDir(), "result.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 sheet"), 0o644))

	_, err := execute(t, "ingest", path, "--date", "2024-06-16", "--start", "2024-06-01", "--end", "2024-06-30", "--force")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 sheet"), jobs.upload.Content)
	assert.Equal(t, "result.pdf", jobs.upload.Filename)
	assert.Equal(t, "2024-06-16", jobs.upload.Date)
	assert.Equal(t, "2024-06-01", jobs.upload.Start)
	assert.Equal(t, "2024-06-30", jobs.upload.End)
	assert.True(t, jobs.upload.Force)
}

func TestIngestCmd_DataURLFromStdin(t *testing.T) {
	jobs := &mockJobService{}
	defer withServices(&Services{Jobs: jobs})()

	dataURL := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 sheet"))
	rootCmd.SetIn(strings.NewReader(dataURL))
	defer rootCmd.SetIn(nil)

	_, err := execute(t, "ingest", "-")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 sheet"), jobs.upload.Content)
	assert.Equal(t, "stdin", jobs.upload.Filename)
	assert.Empty(t, jobs.upload.Date)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	defer withServices(&Services{Jobs: &mockJobService{}})()

	_, err := execute(t, "ingest", filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestDrawCmd(t *testing.T) {
	defer withTerminal(true)()
	jobs := &mockJobService{draw: &domain.DrawRecord{
		Date:   "2024-06-16",
		Source: domain.ProvenanceOfficialDocument,
		Document: &domain.DocumentRef{
			Kind:     domain.ProvenanceOfficialDocument,
			BlobPath: "lottery_pdfs/2024-06-16_abc123.pdf",
			Size:     1024,
		},
		Prizes:      domain.Prizes{domain.CategoryFirst: {"730209"}, domain.CategoryLast3F: {"123", "456"}},
		Amounts:     domain.Amounts{domain.AmountFirst: 6000000},
		Diagnostics: domain.Diagnostics{Warnings: []string{"missing_last2", "missing_amounts"}},
		UpdatedAt:   time.Date(2024, 6, 16, 10, 0, 0, 0, time.UTC),
	}}
	defer withServices(&Services{Jobs: jobs})()

	out, err := execute(t, "draw", "2024-06-16")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-06-16  incomplete  source=official-document")
	assert.Contains(t, out, "document: lottery_pdfs/2024-06-16_abc123.pdf")
	assert.Contains(t, out, "first   1/1")
	assert.Contains(t, out, "123 456")
	assert.Contains(t, out, "amounts: first=6000000")
	assert.Contains(t, out, "warnings: missing_last2, missing_amounts")
}

func TestDrawCmd_NotFound(t *testing.T) {
	defer withServices(&Services{Jobs: &mockJobService{}})()

	_, err := execute(t, "draw", "2024-06-16")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
