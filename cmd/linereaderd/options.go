package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/linereader/internal/config"
	"github.com/jmylchreest/linereader/internal/model"
)

// options holds the daemon command line flags.
type options struct {
	height   int
	offset   int
	color    string
	red      int
	green    int
	blue     int
	alpha    int
	interval time.Duration
	backend  string
	hotkey   string
	noTray   bool
	enable   bool
	config   string
	verbose  bool
}

func (o *options) register(flags *pflag.FlagSet) {
	def := model.DefaultSettings()
	flags.IntVar(&o.height, "height", def.Height, "Band height in pixels")
	flags.IntVar(&o.offset, "offset", def.Offset, "Vertical band offset from the cursor in pixels")
	flags.StringVar(&o.color, "color", def.Color.Hex(), "Band color as rrggbbaa")
	flags.IntVar(&o.red, "red", int(def.Color.R), "Red channel (0-255), overrides --color")
	flags.IntVar(&o.green, "green", int(def.Color.G), "Green channel (0-255), overrides --color")
	flags.IntVar(&o.blue, "blue", int(def.Color.B), "Blue channel (0-255), overrides --color")
	flags.IntVar(&o.alpha, "alpha", int(def.Color.A), "Alpha channel (0-255), overrides --color")
	flags.DurationVar(&o.interval, "interval", 16*time.Millisecond, "Cursor sampling interval")
	flags.StringVar(&o.backend, "backend", string(config.BackendAuto), "Display backend: auto, wayland or x11")
	flags.StringVar(&o.hotkey, "hotkey", "super+shift+l", "Global toggle hotkey, or none")
	flags.BoolVar(&o.noTray, "no-tray", false, "Do not show the tray icon")
	flags.BoolVar(&o.enable, "enable", false, "Start with the overlay active")
	flags.StringVar(&o.config, "config", "", "Path to config file (default: ~/.config/linereader/linereaderd.toml)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Enable verbose logging")
}

// merge returns a copy of file with the command line applied. file is left
// as loaded.
func (o *options) merge(flags *pflag.FlagSet, file *config.DaemonConfig) (*config.DaemonConfig, error) {
	cfg := *file
	if err := o.apply(flags, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// apply overrides cfg with the flags the user actually set and validates
// the result.
func (o *options) apply(flags *pflag.FlagSet, cfg *config.DaemonConfig) error {
	if flags.Changed("height") {
		cfg.Band.Height = o.height
	}
	if flags.Changed("offset") {
		cfg.Band.Offset = o.offset
	}
	if flags.Changed("color") {
		c, err := model.ParseColor(o.color)
		if err != nil {
			return fmt.Errorf("invalid --color: %w", err)
		}
		cfg.Band.Color = c
	}

	channels := []struct {
		name  string
		value int
		dst   *uint8
	}{
		{"red", o.red, &cfg.Band.Color.R},
		{"green", o.green, &cfg.Band.Color.G},
		{"blue", o.blue, &cfg.Band.Color.B},
		{"alpha", o.alpha, &cfg.Band.Color.A},
	}
	for _, ch := range channels {
		if !flags.Changed(ch.name) {
			continue
		}
		if ch.value < 0 || ch.value > 255 {
			return fmt.Errorf("--%s must be between 0 and 255, got %d", ch.name, ch.value)
		}
		*ch.dst = uint8(ch.value)
	}

	if flags.Changed("interval") {
		cfg.Sampler.Interval = config.Duration(o.interval)
	}
	if flags.Changed("backend") {
		cfg.Sampler.Backend = o.backend
	}
	if flags.Changed("hotkey") {
		if o.hotkey == string(config.HotkeyNone) || o.hotkey == "" {
			cfg.Hotkey.Backend = string(config.HotkeyNone)
		} else {
			cfg.Hotkey.Combo = o.hotkey
		}
	}
	if o.noTray {
		cfg.Tray.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
