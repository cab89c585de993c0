package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/geocapsule/internal/app"
	"github.com/roach88/geocapsule/internal/geo"
)

// MapOptions holds flags for the map command.
type MapOptions struct {
	*RootOptions
	CellSize float64
	Hotspot  string
}

// NewMapCommand creates the map command.
func NewMapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MapOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Show capsule hotspots",
		Long: `Group all capsules into hotspots by location.

Capsules within the same grid cell merge into one hotspot. With
--lat/--lon set, each hotspot also reports whether the viewer could
unlock at least one of its capsules right now. Pass --hotspot to list
the capsules behind one hotspot instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.CellSize, "cell-size", geo.DefaultCellDegrees, "grid cell size in degrees")
	cmd.Flags().StringVar(&opts.Hotspot, "hotspot", "", "list the capsules in one hotspot")

	return cmd
}

func runMap(cmd *cobra.Command, opts *MapOptions) error {
	out := formatter(cmd, opts.RootOptions)

	svc, closeStore, err := openService(cmd, opts.RootOptions,
		app.WithGrid(geo.NewGrid(opts.CellSize)))
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	if opts.Hotspot != "" {
		capsules, err := svc.HotspotCapsules(cmd.Context(), opts.Hotspot)
		if err != nil {
			out.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "resolving hotspot", err)
		}
		if len(capsules) == 0 {
			out.Error(ErrCodeNotFound, fmt.Sprintf("no capsules in hotspot %s", opts.Hotspot), nil)
			return NewExitError(ExitCommandError, "hotspot not found")
		}
		if opts.Format == "json" {
			return out.Success(capsules)
		}
		var b strings.Builder
		for _, c := range capsules {
			fmt.Fprintf(&b, "%s  %s\n", c.ID, c.Title)
		}
		return out.Success(strings.TrimRight(b.String(), "\n"))
	}

	hotspots, err := svc.Hotspots(cmd.Context())
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "aggregating hotspots", err)
	}

	if opts.Format == "json" {
		return out.Success(hotspots)
	}
	if len(hotspots) == 0 {
		return out.Success("No capsules buried yet")
	}
	var b strings.Builder
	for _, h := range hotspots {
		marker := " "
		if h.HasUnlocked {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s  %-30s  %d capsule(s)\n", marker, h.ID, h.Location.Address, h.CapsuleCount)
	}
	return out.Success(strings.TrimRight(b.String(), "\n"))
}
