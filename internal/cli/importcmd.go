package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/geocapsule/internal/seed"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Demo bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import [seed-dir]",
		Short: "Import capsules from CUE seed files",
		Long: `Import capsules and chains from the CUE files in a directory.

Seed files validate against the built-in schema before anything is
written. Import is additive: capsule ids already in the database are
skipped. --demo imports the built-in starter capsules instead of a
directory.

Example:
  geocapsule import ./seeds
  geocapsule import --demo`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runImport(cmd, opts, dir)
		},
	}

	cmd.Flags().BoolVar(&opts.Demo, "demo", false, "import the built-in starter capsules")

	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions, dir string) error {
	out := formatter(cmd, opts.RootOptions)

	if opts.Demo == (dir != "") {
		out.Error(ErrCodeInvalid, "import takes either a seed directory or --demo", nil)
		return NewExitError(ExitCommandError, "invalid import arguments")
	}

	svc, closeStore, err := openService(cmd, opts.RootOptions)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	user, err := svc.EnsureUser(cmd.Context())
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading user", err)
	}

	var doc *seed.Document
	if opts.Demo {
		doc = seed.Demo(user.ID, svc.Now())
	} else {
		doc, err = seed.Load(dir, user.ID, svc.Now())
		if err != nil {
			out.Error(ErrCodeSeed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "loading seed", err)
		}
	}

	added, err := seed.Import(cmd.Context(), svc.Records(), doc)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "importing seed", err)
	}

	if opts.Format == "json" {
		return out.Success(map[string]int{"imported": added})
	}
	return out.Success(fmt.Sprintf("Imported %d capsule(s)", added))
}
