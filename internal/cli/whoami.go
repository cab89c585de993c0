package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the session user",
		Long: `Show the pseudo-profile this database belongs to, creating it on
first use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd, rootOpts)
		},
	}

	return cmd
}

func runWhoami(cmd *cobra.Command, opts *RootOptions) error {
	out := formatter(cmd, opts)

	svc, closeStore, err := openService(cmd, opts)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	u, err := svc.EnsureUser(cmd.Context())
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading user", err)
	}

	if opts.Format == "json" {
		return out.Success(u)
	}
	return out.Success(fmt.Sprintf("%s (%s, %s)", u.Name, u.ID, u.Email))
}
