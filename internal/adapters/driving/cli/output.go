package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "print JSON (the default when output is not a terminal)")
}

// wantJSON is true with --json or when output is piped.
func wantJSON(cmd *cobra.Command) bool {
	if v, err := cmd.Flags().GetBool("json"); err == nil && v {
		return true
	}
	return !isTerminal(cmd.OutOrStdout())
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSummary writes a run report.
func printSummary(cmd *cobra.Command, sum *domain.RunSummary) error {
	if wantJSON(cmd) {
		return printJSON(cmd, sum)
	}

	out := cmd.OutOrStdout()
	header := fmt.Sprintf("%s run %s", sum.Job, sum.RunID)
	if sum.Cutoff != "" {
		header += fmt.Sprintf(" (since %s)", sum.Cutoff)
	}
	fmt.Fprintln(out, header)

	if len(sum.Dates) > 0 {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, d := range sum.Dates {
			state := "incomplete"
			if d.Complete {
				state = "complete"
			}
			notes := strings.Join(d.Warnings, ",")
			if d.Error != "" {
				notes = strings.TrimPrefix(notes+" "+d.Error, " ")
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", dateOrDash(d.Date), d.Outcome, state, notes)
		}
		tw.Flush()
	}

	fmt.Fprintf(out, "scanned %d, updated %d, completed %d, already complete %d, failed %d in %s\n",
		sum.Scanned, sum.Updated, sum.Completed, sum.SkippedComplete, sum.Failed, sum.Duration.Round(time.Millisecond))
	if sum.Stopped != "" {
		fmt.Fprintf(out, "stopped: %s\n", sum.Stopped)
	}
	return nil
}

// printDraw writes one record.
func printDraw(cmd *cobra.Command, rec *domain.DrawRecord, schema domain.Schema) error {
	if wantJSON(cmd) {
		return printJSON(cmd, rec)
	}

	out := cmd.OutOrStdout()
	state := "incomplete"
	if rec.Diagnostics.Complete {
		state = "complete"
	}
	fmt.Fprintf(out, "%s  %s  source=%s  updated=%s\n", rec.Date, state, rec.Source, rec.UpdatedAt.Format(time.RFC3339))
	if rec.Document != nil {
		fmt.Fprintf(out, "document: %s (%s, %d bytes)\n", rec.Document.BlobPath, rec.Document.Kind, rec.Document.Size)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, spec := range schema.Categories {
		nums := rec.Prizes[spec.Category]
		fmt.Fprintf(tw, "  %s\t%d/%d\t%s\n", spec.Category, len(nums), spec.Expected, strings.Join(nums, " "))
	}
	tw.Flush()

	if len(rec.Amounts) > 0 {
		parts := make([]string, 0, len(schema.AmountKeys))
		for _, k := range schema.AmountKeys {
			if v, ok := rec.Amounts[k]; ok {
				parts = append(parts, fmt.Sprintf("%s=%d", k, v))
			}
		}
		fmt.Fprintf(out, "amounts: %s\n", strings.Join(parts, " "))
	}
	if len(rec.Diagnostics.Warnings) > 0 {
		fmt.Fprintf(out, "warnings: %s\n", strings.Join(rec.Diagnostics.Warnings, ", "))
	}
	return nil
}

func dateOrDash(date string) string {
	if date == "" {
		return "-"
	}
	return date
}
