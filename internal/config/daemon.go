// Package config loads the linereaderd configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/linereader/internal/model"
)

// Interval bounds for the cursor sampler.
const (
	MinInterval = 5 * time.Millisecond
	MaxInterval = 100 * time.Millisecond
)

var (
	// ErrInterval is returned for sampler intervals outside the allowed range.
	ErrInterval = errors.New("sampler interval out of range")
	// ErrVolume is returned for volumes outside 0-100.
	ErrVolume = errors.New("volume out of range")
)

// DaemonConfig is the configuration for linereaderd.
// Loaded from ~/.config/linereader/linereaderd.toml
type DaemonConfig struct {
	Band    BandConfig    `toml:"band"`
	Sampler SamplerConfig `toml:"sampler"`
	Hotkey  HotkeyConfig  `toml:"hotkey"`
	Tray    TrayConfig    `toml:"tray"`
	Sound   SoundConfig   `toml:"sound"`
	Notify  NotifyConfig  `toml:"notify"`
}

// BandConfig contains the initial band settings.
type BandConfig struct {
	Height int         `toml:"height"`
	Offset int         `toml:"offset"`
	Color  model.Color `toml:"color"` // rrggbbaa
}

// SamplerConfig contains cursor sampling settings.
type SamplerConfig struct {
	Interval Duration `toml:"interval"` // e.g. "16ms"
	Backend  string   `toml:"backend"`  // "auto", "wayland", "x11"
}

// HotkeyConfig contains global hotkey settings.
type HotkeyConfig struct {
	Combo   string `toml:"combo"`   // e.g. "super+shift+l"
	Backend string `toml:"backend"` // "auto", "x11", "compositor", "none"
}

// TrayConfig contains tray icon settings.
type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

// SoundConfig contains toggle sound settings.
type SoundConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"` // 0-100
	On      string `toml:"on"`     // played on enable, empty uses the built-in cue
	Off     string `toml:"off"`    // played on disable
}

// NotifyConfig contains desktop notification settings.
type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

// Backend names the display integration in use.
type Backend string

const (
	BackendAuto    Backend = "auto"
	BackendWayland Backend = "wayland"
	BackendX11     Backend = "x11"
)

// ValidBackends returns all valid sampler backend values.
func ValidBackends() []Backend {
	return []Backend{BackendAuto, BackendWayland, BackendX11}
}

// HotkeyBackend names the hotkey mechanism.
type HotkeyBackend string

const (
	HotkeyAuto       HotkeyBackend = "auto"
	HotkeyX11        HotkeyBackend = "x11"
	HotkeyCompositor HotkeyBackend = "compositor"
	HotkeyNone       HotkeyBackend = "none"
)

// ValidHotkeyBackends returns all valid hotkey backend values.
func ValidHotkeyBackends() []HotkeyBackend {
	return []HotkeyBackend{HotkeyAuto, HotkeyX11, HotkeyCompositor, HotkeyNone}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	s := model.DefaultSettings()
	return &DaemonConfig{
		Band: BandConfig{
			Height: s.Height,
			Offset: s.Offset,
			Color:  s.Color,
		},
		Sampler: SamplerConfig{
			Interval: Duration(16 * time.Millisecond),
			Backend:  string(BackendAuto),
		},
		Hotkey: HotkeyConfig{
			Combo:   "super+shift+l",
			Backend: string(HotkeyAuto),
		},
		Tray: TrayConfig{
			Enabled: true,
		},
		Sound: SoundConfig{
			Enabled: false,
			Volume:  60,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
	}
}

// Settings returns the band configuration as overlay settings.
func (c *DaemonConfig) Settings() model.Settings {
	return model.Settings{
		Height: c.Band.Height,
		Offset: c.Band.Offset,
		Color:  c.Band.Color,
	}
}

// DaemonConfigPath returns the path to the daemon config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func DaemonConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "linereader", "linereaderd.toml"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "linereader", "linereaderd.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from the default path.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfig() (*DaemonConfig, error) {
	path, err := DaemonConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadDaemonConfigFrom(path)
}

// LoadDaemonConfigFrom loads the daemon configuration from path.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfigFrom(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseDaemonConfig(data)
}

// ParseDaemonConfig overlays TOML data on the defaults and validates the result.
func ParseDaemonConfig(data []byte) (*DaemonConfig, error) {
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig writes the configuration to path, creating parent directories.
func SaveDaemonConfig(config *DaemonConfig, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := config.Marshal()
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Marshal encodes the configuration as TOML.
func (c *DaemonConfig) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return err
	}

	interval := c.Sampler.Interval.Duration()
	if interval < MinInterval || interval > MaxInterval {
		return fmt.Errorf("%w: must be between %s and %s, got %s", ErrInterval, MinInterval, MaxInterval, interval)
	}

	if !slices.Contains(ValidBackends(), Backend(c.Sampler.Backend)) {
		return fmt.Errorf("invalid sampler backend %q, must be one of: %v", c.Sampler.Backend, ValidBackends())
	}

	if !slices.Contains(ValidHotkeyBackends(), HotkeyBackend(c.Hotkey.Backend)) {
		return fmt.Errorf("invalid hotkey backend %q, must be one of: %v", c.Hotkey.Backend, ValidHotkeyBackends())
	}
	if c.Hotkey.Backend != string(HotkeyNone) {
		if _, err := ParseHotkey(c.Hotkey.Combo); err != nil {
			return err
		}
	}

	if c.Sound.Volume < 0 || c.Sound.Volume > 100 {
		return fmt.Errorf("%w: must be between 0 and 100, got %d", ErrVolume, c.Sound.Volume)
	}

	return nil
}

// SoundPath returns the configured sound for a state change.
// Expands ~ to home directory.
func (c *DaemonConfig) SoundPath(active bool) string {
	if active {
		return ExpandPath(c.Sound.On)
	}
	return ExpandPath(c.Sound.Off)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
