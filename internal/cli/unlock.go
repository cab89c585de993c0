package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/geocapsule/internal/engine"
)

// UnlockOptions holds flags for the unlock command.
type UnlockOptions struct {
	*RootOptions
	Key string
}

// NewUnlockCommand creates the unlock command.
func NewUnlockCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UnlockOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "unlock <capsule-id>",
		Short: "Attempt to unlock a capsule from the viewer position",
		Long: `Attempt to unlock a capsule.

The attempt passes only when the viewer stands inside the geofence, the
unlock date has arrived, and any required access key matches. A denial
exits 1 and reports which guard refused; re-unlocking an already open
capsule succeeds without rewriting anything.

Example:
  geocapsule unlock capsule_42 --lat 37.7749 --lon -122.4194`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnlock(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "access key for private capsules")

	return cmd
}

func runUnlock(cmd *cobra.Command, opts *UnlockOptions, id string) error {
	out := formatter(cmd, opts.RootOptions)

	svc, closeStore, err := openService(cmd, opts.RootOptions)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	d, err := svc.Unlock(cmd.Context(), id, opts.Key)
	if err != nil {
		if engine.IsNotFound(err) {
			out.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unlocking capsule", err)
		}
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unlocking capsule", err)
	}

	if d.Denied() {
		if opts.Format == "json" {
			out.Error(ErrCodeDenied, d.Reason.Message(), d)
		} else {
			out.Error(ErrCodeDenied, d.Reason.Message(), nil)
			if d.Advisory == engine.AdvisoryPositionUnavailable {
				out.VerboseLog("position unavailable; guards evaluated with no fix")
			}
		}
		return NewExitError(ExitFailure, string(d.Reason))
	}

	if opts.Format == "json" {
		return out.Success(d)
	}
	if d.AlreadyUnlocked {
		return out.Success(fmt.Sprintf("Capsule %s was already unlocked", id))
	}
	return out.Success(fmt.Sprintf("Unlocked %s", id))
}
