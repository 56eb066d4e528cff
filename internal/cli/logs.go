package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/logging"
)

func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Maintain persisted system logs",
	}

	var days int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete system logs older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			db, err := rootOpts.OpenDB()
			if err != nil {
				return err
			}
			deleted, err := logging.Cleanup(cmd.Context(), db, days)
			if err != nil {
				return err
			}
			return emit(rootOpts, cmd.OutOrStdout(), map[string]int64{"deleted": deleted}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted %d log record(s)\n", deleted)
			})
		},
	}
	cleanup.Flags().IntVar(&days, "days", 30, "retention in days")

	cmd.AddCommand(cleanup)
	return cmd
}
