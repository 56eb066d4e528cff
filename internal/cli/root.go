// Package cli implements appforgectl, the operator tool for migrations,
// plan management and reconciliation sweeps.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// OpenDB connects to the database. Replaced in tests.
	OpenDB func() (*gorm.DB, error)
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. openDB is called lazily by the
// subcommands that need a database.
func NewRootCommand(openDB func() (*gorm.DB, error)) *cobra.Command {
	opts := &RootOptions{OpenDB: openDB}

	cmd := &cobra.Command{
		Use:   "appforgectl",
		Short: "Operate the appforge backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewPlansCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// emit writes v as indented JSON, or calls text for the text format.
func emit(opts *RootOptions, w io.Writer, v interface{}, text func(io.Writer)) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
