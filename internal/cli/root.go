// Package cli implements the geocapsule command line interface.
//
// Every command opens the SQLite database named by --db, runs one service
// operation, and renders the result through the shared OutputFormatter in
// either text or JSON. The viewer position comes from --lat/--lon; leaving
// them unset means no position is available and location guards fail
// closed.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DBPath  string

	// Lat and Lon carry the viewer position. Only meaningful when both
	// flags were set; commands check PositionSet.
	Lat         float64
	Lon         float64
	PositionSet bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the geocapsule CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "geocapsule",
		Short: "geocapsule - location-locked time capsules",
		Long: `Bury messages at real-world coordinates and unlock them by
standing in the right place at the right time.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			latSet := cmd.Flags().Changed("lat")
			lonSet := cmd.Flags().Changed("lon")
			if latSet != lonSet {
				return fmt.Errorf("--lat and --lon must be set together")
			}
			opts.PositionSet = latSet && lonSet
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "geocapsule.db", "path to the capsule database")
	cmd.PersistentFlags().Float64Var(&opts.Lat, "lat", 0, "viewer latitude")
	cmd.PersistentFlags().Float64Var(&opts.Lon, "lon", 0, "viewer longitude")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewUnlockCommand(opts))
	cmd.AddCommand(NewMapCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDiscoverCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
