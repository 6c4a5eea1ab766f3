package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/linereader/internal/dbus"
	"github.com/jmylchreest/linereader/internal/form"
	"github.com/jmylchreest/linereader/internal/model"
)

var setOpts struct {
	height   int
	offset   int
	color    string
	red      int
	green    int
	blue     int
	alpha    int
	defaults bool
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the reading band settings",
	Long: `Change the band settings of the running daemon. Only the given values
change; everything else keeps its current value. The change lasts until the
daemon exits, edit the config file to make it permanent.

Per-channel flags are applied after --color.`,
	Example: `  # Taller band, slightly above the pointer
  linereader set --height 40 --offset -10

  # Pale yellow
  linereader set --color ffff0030

  # Start over from the built-in defaults, then make it more opaque
  linereader set --defaults --alpha 64`,
	Args: cobra.NoArgs,
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().IntVar(&setOpts.height, "height", 0, "Band height in pixels")
	setCmd.Flags().IntVar(&setOpts.offset, "offset", 0, "Vertical offset from the pointer in pixels")
	setCmd.Flags().StringVar(&setOpts.color, "color", "", "Band color as rrggbbaa")
	setCmd.Flags().IntVar(&setOpts.red, form.KeyRed, 0, "Red channel (0-255)")
	setCmd.Flags().IntVar(&setOpts.green, form.KeyGreen, 0, "Green channel (0-255)")
	setCmd.Flags().IntVar(&setOpts.blue, form.KeyBlue, 0, "Blue channel (0-255)")
	setCmd.Flags().IntVar(&setOpts.alpha, form.KeyAlpha, 0, "Alpha channel (0-255)")
	setCmd.Flags().BoolVar(&setOpts.defaults, "defaults", false, "Start from the built-in defaults")
}

func runSet(cmd *cobra.Command, args []string) error {
	if cmd.Flags().NFlag() == 0 {
		return fmt.Errorf("nothing to change, see 'linereader set --help'")
	}

	return withClient(func(ctx context.Context, client *dbus.Client) error {
		current, err := client.BeginSettings(ctx)
		if err != nil {
			return err
		}

		next, err := mergeSettings(current, cmd.Flags())
		if err == nil {
			err = client.PreviewSettings(ctx, next)
		}
		if err != nil {
			if rerr := client.RejectSettings(ctx); rerr != nil {
				logger.Debug("failed to reject settings session", "error", rerr)
			}
			return err
		}

		if err := client.AcceptSettings(ctx); err != nil {
			return err
		}
		fmt.Printf("height %d, offset %d, color %s\n", next.Height, next.Offset, next.Color.Hex())
		return nil
	})
}

// mergeSettings applies the flags the user set on top of current. Values
// outside a field's range are rejected rather than clamped.
func mergeSettings(current model.Settings, flags *pflag.FlagSet) (model.Settings, error) {
	next := current
	if setOpts.defaults {
		next = model.DefaultSettings()
	}

	if flags.Changed("color") {
		c, err := model.ParseColor(setOpts.color)
		if err != nil {
			return current, err
		}
		next = next.WithColor(c)
	}

	values := []struct {
		key   string
		value int
	}{
		{form.KeyHeight, setOpts.height},
		{form.KeyOffset, setOpts.offset},
		{form.KeyRed, setOpts.red},
		{form.KeyGreen, setOpts.green},
		{form.KeyBlue, setOpts.blue},
		{form.KeyAlpha, setOpts.alpha},
	}
	for _, v := range values {
		if !flags.Changed(v.key) {
			continue
		}
		f, err := form.Lookup(v.key)
		if err != nil {
			return current, err
		}
		if v.value < f.Min || v.value > f.Max {
			return current, fmt.Errorf("--%s must be between %d and %d, got %d", v.key, f.Min, f.Max, v.value)
		}
		next, err = form.Apply(next, v.key, v.value)
		if err != nil {
			return current, err
		}
	}

	return next, next.Validate()
}
