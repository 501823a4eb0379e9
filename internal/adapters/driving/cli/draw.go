package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
)

var drawCmd = &cobra.Command{
	Use:   "draw <date>",
	Short: "Show the stored record for a draw date",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraw,
}

func init() {
	addOutputFlag(drawCmd)
	rootCmd.AddCommand(drawCmd)
}

func runDraw(cmd *cobra.Command, args []string) error {
	jobs, err := jobService(cmd)
	if err != nil {
		return err
	}

	rec, err := jobs.Draw(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("draw %s: %w", args[0], err)
	}
	return printDraw(cmd, rec, domain.DefaultSchema())
}
