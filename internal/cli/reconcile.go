package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/store"
)

func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair cached subscription owners and app pointers",
		Long: `Walks every app and re-runs subscription reconciliation.

The most recently updated subscription of each app becomes its current
subscription. Use it after a crash or a manual data fix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.OpenDB()
			if err != nil {
				return err
			}
			report, err := store.New(db).Sweep(cmd.Context(), batchSize)
			if err != nil {
				return err
			}
			if err := emit(rootOpts, cmd.OutOrStdout(), report, func(w io.Writer) {
				fmt.Fprintf(w, "apps: %d  subscriptions: %d  repaired: %d  failed: %d\n",
					report.Apps, report.Scanned, report.Repaired, report.Failed)
			}); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d subscription(s) could not be reconciled", report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "apps loaded per batch")
	return cmd
}
