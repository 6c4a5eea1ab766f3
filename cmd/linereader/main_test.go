package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/linereader/internal/config"
	"github.com/jmylchreest/linereader/internal/model"
)

// parseSetFlags resets the set options and parses args with the set
// command's flag definitions.
func parseSetFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	setOpts.height, setOpts.offset, setOpts.color = 0, 0, ""
	setOpts.red, setOpts.green, setOpts.blue, setOpts.alpha = 0, 0, 0, 0
	setOpts.defaults = false

	flags := pflag.NewFlagSet("set", pflag.ContinueOnError)
	flags.AddFlagSet(setCmd.Flags())
	setCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestMergeSettings(t *testing.T) {
	current := model.Settings{Height: 30, Offset: 5, Color: model.RGBA(10, 20, 30, 40)}

	tests := []struct {
		name string
		args []string
		want model.Settings
	}{
		{"nothing", nil, current},
		{"height", []string{"--height", "44"}, current.WithHeight(44)},
		{"negative offset", []string{"--offset=-12"}, current.WithOffset(-12)},
		{"color", []string{"--color", "ffff0030"}, current.WithColor(model.RGBA(255, 255, 0, 48))},
		{"channel after color", []string{"--color", "ffff0030", "--alpha", "99"}, current.WithColor(model.RGBA(255, 255, 0, 99))},
		{"single channel", []string{"--blue", "200"}, current.WithColor(model.RGBA(10, 20, 200, 40))},
		{"defaults", []string{"--defaults"}, model.DefaultSettings()},
		{"defaults then height", []string{"--defaults", "--height", "8"}, model.DefaultSettings().WithHeight(8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := parseSetFlags(t, tt.args...)
			got, err := mergeSettings(current, flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeSettings_Invalid(t *testing.T) {
	current := model.DefaultSettings()

	tests := []struct {
		name string
		args []string
	}{
		{"bad color", []string{"--color", "orange"}},
		{"channel range", []string{"--green", "256"}},
		{"height range", []string{"--height=-1"}},
		{"offset range", []string{"--offset", "99999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := parseSetFlags(t, tt.args...)
			got, err := mergeSettings(current, flags)
			assert.Error(t, err)
			assert.Equal(t, current, got)
		})
	}
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linereader", "linereaderd.toml")

	require.NoError(t, initConfig(path, false))
	cfg, err := config.LoadDaemonConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDaemonConfig(), cfg)

	err = initConfig(path, false)
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, os.WriteFile(path, []byte("[band]\nheight = 99\n"), 0600))
	require.NoError(t, initConfig(path, true))
	cfg, err = config.LoadDaemonConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultHeight, cfg.Band.Height)
}

func TestStateName(t *testing.T) {
	assert.Equal(t, "active", stateName(true))
	assert.Equal(t, "inactive", stateName(false))
}
