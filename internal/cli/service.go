package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/geocapsule/internal/app"
	"github.com/roach88/geocapsule/internal/geo"
	"github.com/roach88/geocapsule/internal/geoloc"
	"github.com/roach88/geocapsule/internal/store"
)

// openService opens the database and wires the service for one command
// invocation. The returned closer must run before the command exits.
func openService(cmd *cobra.Command, opts *RootOptions, extra ...app.Option) (*app.Service, func(), error) {
	kv, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "opening database", err)
	}

	var viewer *geo.Point
	if opts.PositionSet {
		viewer = &geo.Point{Latitude: opts.Lat, Longitude: opts.Lon}
	}

	options := []app.Option{
		app.WithProvider(geoloc.Static{Point: viewer}),
		app.WithLogger(commandLogger(cmd, opts)),
	}
	options = append(options, extra...)

	return app.New(kv, options...), func() { kv.Close() }, nil
}

// commandLogger builds the structured logger for a command run. Quiet by
// default; --verbose surfaces info-level records on stderr.
func commandLogger(cmd *cobra.Command, opts *RootOptions) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelInfo
	}
	w := cmd.ErrOrStderr()
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// formatter builds the output formatter for a command run.
func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
