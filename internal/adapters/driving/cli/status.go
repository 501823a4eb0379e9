package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

// jobStatus is one row of the status report.
type jobStatus struct {
	Job       string    `json:"job"`
	Enabled   bool      `json:"enabled"`
	Interval  string    `json:"interval"`
	NextRun   time.Time `json:"next_run,omitzero"`
	LastError string    `json:"last_error,omitempty"`

	LastRun *lastRun `json:"last_run,omitempty"`
}

type lastRun struct {
	RunID      string    `json:"run_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Scanned    int       `json:"scanned"`
	Updated    int       `json:"updated"`
	Completed  int       `json:"completed"`
	Failed     int       `json:"failed"`
	Stopped    string    `json:"stopped,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show job schedules and their last runs",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	addOutputFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Scheduler == nil {
		return errors.New("scheduler not configured")
	}

	statuses, err := s.Scheduler.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("read job status: %w", err)
	}

	rows := make([]jobStatus, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, toJobStatus(st))
	}
	if wantJSON(cmd) {
		return printJSON(cmd, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no jobs scheduled yet; run drawsync serve")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tEVERY\tNEXT\tLAST RUN")
	for _, r := range rows {
		every := r.Interval
		if !r.Enabled {
			every = "off"
		}
		next := "-"
		if r.Enabled && !r.NextRun.IsZero() {
			next = r.NextRun.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Job, every, next, describeRun(r))
	}
	return tw.Flush()
}

func toJobStatus(st domain.TaskStatus) jobStatus {
	row := jobStatus{
		Job:       st.Task.ID,
		Enabled:   st.Task.Enabled,
		Interval:  st.Task.Interval.String(),
		NextRun:   st.Task.NextRun,
		LastError: st.Task.LastError,
	}
	if r := st.Last; r != nil {
		row.LastRun = &lastRun{
			RunID:      r.RunID,
			StartedAt:  r.StartedAt,
			DurationMS: r.Duration().Milliseconds(),
			Success:    r.Success,
			Scanned:    r.Scanned,
			Updated:    r.Updated,
			Completed:  r.Completed,
			Failed:     r.Failed,
			Stopped:    r.Stopped,
		}
	}
	return row
}

func describeRun(r jobStatus) string {
	if r.LastRun == nil {
		return "never"
	}
	at := r.LastRun.StartedAt.Local().Format(time.DateTime)
	if !r.LastRun.Success {
		return fmt.Sprintf("%s failed: %s", at, r.LastError)
	}
	return fmt.Sprintf("%s updated %d/%d, failed %d", at, r.LastRun.Updated, r.LastRun.Scanned, r.LastRun.Failed)
}
