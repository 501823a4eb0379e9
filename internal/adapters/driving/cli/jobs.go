package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the latest published draw",
	Long: `Reads the most recent draw from the results API, then the official result
sheet, then the fallbacks until every prize category is filled.`,
	Args: cobra.NoArgs,
	RunE: runJob(domain.JobLiveSync),
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fill in history inside the rolling window",
}

var backfillAPICmd = &cobra.Command{
	Use:   "api",
	Short: "Walk the paged API history newest first",
	Args:  cobra.NoArgs,
	RunE:  runJob(domain.JobAPIBackfill),
}

var backfillDocumentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Attach mirror sheets to records without the official sheet",
	Args:  cobra.NoArgs,
	RunE:  runJob(domain.JobDocumentBackfill),
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Run the full fallback chain over incomplete records",
	Args:  cobra.NoArgs,
	RunE:  runJob(domain.JobRepair),
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Re-read result sheets already in the blob store",
	Long: `Lists stored result sheets, reads the draw date from each file name and
merges what the sheet yields. With --report, lists incomplete records instead.`,
	Args: cobra.NoArgs,
	RunE: runJob(domain.JobStoredDocuments),
}

var repairDateCmd = &cobra.Command{
	Use:   "repair-date <date>",
	Short: "Run the full fallback chain for one date",
	Example: `  drawsync repair-date 2024-06-16
  drawsync repair-date 2567/6/16 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRepairDate,
}

func init() {
	addWindowFlags(syncCmd, false, false, false)
	addWindowFlags(backfillAPICmd, true, false, true)
	addWindowFlags(backfillDocumentsCmd, false, true, true)
	addWindowFlags(repairCmd, false, true, true)
	addWindowFlags(sweepCmd, false, true, false)
	sweepCmd.Flags().Bool("report", false, "list incomplete records without fetching")

	repairDateCmd.Flags().Bool("force", false, "reprocess even when the record is complete")
	addOutputFlag(repairDateCmd)

	backfillCmd.AddCommand(backfillAPICmd)
	backfillCmd.AddCommand(backfillDocumentsCmd)
	rootCmd.AddCommand(syncCmd, backfillCmd, repairCmd, sweepCmd, repairDateCmd)
}

// addWindowFlags registers the run bounds a job accepts.
func addWindowFlags(cmd *cobra.Command, pages, limit, upserts bool) {
	f := cmd.Flags()
	f.Int("days", 0, "rolling window in days (default 366)")
	if pages {
		f.Int("pages", 0, "API pages to read")
	}
	if limit {
		f.Int("limit", 0, "records or files to scan")
	}
	if upserts {
		f.Int("max-upserts", 0, "stop after this many updated records")
	}
	f.Bool("force", false, "reprocess dates that are already complete")
	f.Duration("timeout", 0, "stop the run after this long (0 = no limit)")
	addOutputFlag(cmd)
}

// jobOptions starts from the configured window and applies the flags
// given on the command line. An explicit bound must be positive.
func jobOptions(cmd *cobra.Command, job domain.JobName) (domain.JobOptions, error) {
	opts, err := configuredOptions(job)
	if err != nil {
		return opts, err
	}

	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"days", &opts.Days},
		{"pages", &opts.Pages},
		{"limit", &opts.Limit},
		{"max-upserts", &opts.MaxUpserts},
	} {
		flag := cmd.Flags().Lookup(f.name)
		if flag == nil || !flag.Changed {
			continue
		}
		v, err := cmd.Flags().GetInt(f.name)
		if err != nil {
			return opts, err
		}
		if v <= 0 {
			return opts, fmt.Errorf("%w: --%s must be positive, got %d", domain.ErrInvalidWindow, f.name, v)
		}
		*f.dst = v
	}

	if cmd.Flags().Changed("force") {
		opts.Force, _ = cmd.Flags().GetBool("force")
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	if cmd.Flags().Lookup("report") != nil {
		opts.ReportOnly, _ = cmd.Flags().GetBool("report")
	}
	return opts, nil
}

func runJob(job domain.JobName) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		jobs, err := jobService(cmd)
		if err != nil {
			return err
		}
		opts, err := jobOptions(cmd, job)
		if err != nil {
			return err
		}

		sum, err := jobs.Run(cmd.Context(), job, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", job, err)
		}
		return printSummary(cmd, sum)
	}
}

func runRepairDate(cmd *cobra.Command, args []string) error {
	jobs, err := jobService(cmd)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	sum, err := jobs.RepairDate(cmd.Context(), args[0], force)
	if err != nil {
		return fmt.Errorf("repair %s: %w", args[0], err)
	}
	return printSummary(cmd, sum)
}
