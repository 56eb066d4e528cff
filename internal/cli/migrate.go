package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/database"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.OpenDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			return emit(rootOpts, cmd.OutOrStdout(), map[string]string{"status": "ok"}, func(w io.Writer) {
				fmt.Fprintln(w, "schema up to date")
			})
		},
	}
}
