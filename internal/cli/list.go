package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/geocapsule/internal/capsule"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Mine   bool
	Chains bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List capsules",
		Long: `List stored capsules in insertion order.

--mine limits the listing to capsules created by the session user;
--chains lists memory chains instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Mine, "mine", false, "only capsules created by the session user")
	cmd.Flags().BoolVar(&opts.Chains, "chains", false, "list memory chains instead of capsules")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	out := formatter(cmd, opts.RootOptions)

	svc, closeStore, err := openService(cmd, opts.RootOptions)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	if opts.Chains {
		chains, err := svc.Chains(cmd.Context())
		if err != nil {
			out.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "listing chains", err)
		}
		if opts.Format == "json" {
			return out.Success(chains)
		}
		if len(chains) == 0 {
			return out.Success("No memory chains")
		}
		var b strings.Builder
		for _, ch := range chains {
			fmt.Fprintf(&b, "%s  %s (%d capsules)\n", ch.ID, ch.Title, len(ch.CapsuleIDs))
		}
		return out.Success(strings.TrimRight(b.String(), "\n"))
	}

	var capsules []capsule.TimeCapsule
	if opts.Mine {
		capsules, err = svc.MyCapsules(cmd.Context())
	} else {
		capsules, err = svc.AllCapsules(cmd.Context())
	}
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing capsules", err)
	}

	if opts.Format == "json" {
		return out.Success(capsules)
	}
	if len(capsules) == 0 {
		return out.Success("No capsules buried yet")
	}
	return out.Success(renderCapsuleTable(capsules))
}

func renderCapsuleTable(capsules []capsule.TimeCapsule) string {
	var b strings.Builder
	for _, c := range capsules {
		state := "locked"
		if c.IsUnlocked {
			state = "unlocked"
		}
		visibility := "public"
		if !c.IsPublic {
			visibility = "private"
		}
		fmt.Fprintf(&b, "%s  %-24s  %s/%s  unlocks %s\n",
			c.ID, c.Title, visibility, state, c.UnlockDate.Format(time.RFC3339))
	}
	return strings.TrimRight(b.String(), "\n")
}
