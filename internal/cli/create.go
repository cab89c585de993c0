package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/geocapsule/internal/capsule"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Title      string
	Message    string
	Address    string
	Radius     float64
	Unlock     string
	Private    bool
	AccessKey  string
	ChainID    string
	ChainOrder int
	Media      []string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Bury a new capsule at the viewer position",
		Long: `Bury a new capsule at the coordinates given by --lat/--lon.

The capsule stays locked until its unlock date, and only for viewers
standing inside the geofence radius. Omit --address to label the spot
with its coordinates.

Example:
  geocapsule create --lat 37.7749 --lon -122.4194 \
    --title "Buried note" --unlock 2027-01-01T00:00:00Z`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "capsule title (required)")
	cmd.Flags().StringVar(&opts.Message, "message", "", "capsule message")
	cmd.Flags().StringVar(&opts.Address, "address", "", "human-readable location label")
	cmd.Flags().Float64Var(&opts.Radius, "radius", 50, "geofence radius in meters")
	cmd.Flags().StringVar(&opts.Unlock, "unlock", "", "unlock date, RFC 3339 (required)")
	cmd.Flags().BoolVar(&opts.Private, "private", false, "make the capsule private")
	cmd.Flags().StringVar(&opts.AccessKey, "key", "", "access key for a private capsule")
	cmd.Flags().StringVar(&opts.ChainID, "chain", "", "memory chain id")
	cmd.Flags().IntVar(&opts.ChainOrder, "chain-order", 0, "position within the memory chain")
	cmd.Flags().StringSliceVar(&opts.Media, "media", nil, "media attachment as type:url:filename (repeatable)")

	return cmd
}

func runCreate(cmd *cobra.Command, opts *CreateOptions) error {
	out := formatter(cmd, opts.RootOptions)

	if !opts.PositionSet {
		out.Error(ErrCodeInvalid, "create requires --lat and --lon", nil)
		return NewExitError(ExitCommandError, "missing capsule coordinates")
	}
	if opts.Unlock == "" {
		out.Error(ErrCodeInvalid, "create requires --unlock", nil)
		return NewExitError(ExitCommandError, "missing unlock date")
	}
	unlockAt, err := time.Parse(time.RFC3339, opts.Unlock)
	if err != nil {
		out.Error(ErrCodeInvalid, fmt.Sprintf("invalid --unlock: %v", err), nil)
		return WrapExitError(ExitCommandError, "invalid unlock date", err)
	}

	media, err := parseMediaFlags(opts.Media)
	if err != nil {
		out.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid media flag", err)
	}

	svc, closeStore, err := openService(cmd, opts.RootOptions)
	if err != nil {
		out.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer closeStore()

	c, err := svc.CreateCapsule(cmd.Context(), capsule.Draft{
		Title:      opts.Title,
		Message:    opts.Message,
		MediaFiles: media,
		Location: capsule.Location{
			Latitude:  opts.Lat,
			Longitude: opts.Lon,
			Address:   opts.Address,
			Radius:    opts.Radius,
		},
		UnlockDate: unlockAt,
		IsPublic:   !opts.Private,
		AccessKey:  opts.AccessKey,
		ChainID:    opts.ChainID,
		ChainOrder: opts.ChainOrder,
	})
	if err != nil {
		out.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "creating capsule", err)
	}

	if opts.Format == "json" {
		return out.Success(c)
	}
	return out.Success(fmt.Sprintf("Buried %s at %s (unlocks %s)",
		c.ID, c.Location.Address, c.UnlockDate.Format(time.RFC3339)))
}

// parseMediaFlags parses repeated type:url:filename attachments. URLs may
// themselves contain colons, so the filename is taken from the last colon.
func parseMediaFlags(specs []string) ([]capsule.MediaFile, error) {
	var media []capsule.MediaFile
	for _, spec := range specs {
		first := strings.Index(spec, ":")
		last := strings.LastIndex(spec, ":")
		if first < 0 || first == last {
			return nil, fmt.Errorf("media %q: want type:url:filename", spec)
		}
		kind := capsule.MediaKind(spec[:first])
		if !kind.Valid() {
			return nil, fmt.Errorf("media %q: unknown type %q", spec, spec[:first])
		}
		media = append(media, capsule.MediaFile{
			ID:       capsule.NewMediaID(),
			Kind:     kind,
			URL:      spec[first+1 : last],
			Filename: spec[last+1:],
		})
	}
	return media, nil
}
