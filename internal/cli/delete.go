package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/geocapsule/internal/engine"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <capsule-id>",
		Short: "Delete a capsule",
		Long: `Delete a capsule and its discovery record. Hotspots shrink on the
next aggregation; there is no undo.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runDelete(cmd *cobra.Command, opts *RootOptions, id string) error {
	out := formatter(cmd, opts)

	svc, closeStore, err := openService(cmd, opts)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	if err := svc.DeleteCapsule(cmd.Context(), id); err != nil {
		if engine.IsNotFound(err) {
			out.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "deleting capsule", err)
		}
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "deleting capsule", err)
	}

	if opts.Format == "json" {
		return out.Success(map[string]string{"deleted": id})
	}
	return out.Success(fmt.Sprintf("Deleted %s", id))
}
