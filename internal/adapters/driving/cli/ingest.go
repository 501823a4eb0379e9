package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Store and read a result sheet supplied by hand",
	Long: `Stores a result sheet as an upload and merges what it yields. The draw date
is read from the sheet heading unless --date is given. Use "-" to read from
stdin. A file holding a data URL (data:application/pdf;base64,...) is decoded.`,
	Example: `  drawsync ingest ~/Downloads/result.pdf
  drawsync ingest scan.pdf --date 2024-06-16 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.String("date", "", "draw date (default: read from the sheet)")
	f.String("start", "", "reject sheets dated before this")
	f.String("end", "", "reject sheets dated after this")
	f.Bool("force", false, "ingest even when the record holds the official sheet")
	addOutputFlag(ingestCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	jobs, err := jobService(cmd)
	if err != nil {
		return err
	}

	content, name, err := readSheet(cmd, args[0])
	if err != nil {
		return err
	}

	f := cmd.Flags()
	upload := domain.Upload{Content: content, Filename: name}
	upload.Date, _ = f.GetString("date")
	upload.Start, _ = f.GetString("start")
	upload.End, _ = f.GetString("end")
	upload.Force, _ = f.GetBool("force")

	sum, err := jobs.IngestUpload(cmd.Context(), upload)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", name, err)
	}
	return printSummary(cmd, sum)
}

func readSheet(cmd *cobra.Command, path string) ([]byte, string, error) {
	var (
		data []byte
		err  error
		name = filepath.Base(path)
	)
	if path == "-" {
		name = "stdin"
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("data:")) {
		data, err = domain.DecodeUpload(string(data))
		if err != nil {
			return nil, "", err
		}
	}
	return data, name, nil
}
