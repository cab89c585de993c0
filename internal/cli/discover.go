package cli

import (
	"github.com/spf13/cobra"
)

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List discovered capsules",
		Long: `List the capsules the session user has unlocked, in the order
they were first discovered.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, rootOpts)
		},
	}

	return cmd
}

func runDiscover(cmd *cobra.Command, opts *RootOptions) error {
	out := formatter(cmd, opts)

	svc, closeStore, err := openService(cmd, opts)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	capsules, err := svc.DiscoveredCapsules(cmd.Context())
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing discoveries", err)
	}

	if opts.Format == "json" {
		return out.Success(capsules)
	}
	if len(capsules) == 0 {
		return out.Success("Nothing discovered yet")
	}
	return out.Success(renderCapsuleTable(capsules))
}
