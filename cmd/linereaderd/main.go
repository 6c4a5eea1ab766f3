// Package main is the entry point for the linereaderd overlay daemon.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/linereader/internal/config"
)

const (
	appID   = "io.github.jmylchreest.linereaderd"
	appName = "linereaderd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Screen reading guide that follows the mouse cursor",
		Long: `linereaderd draws a translucent horizontal band across every display at
the height of the mouse pointer. The band is click-through and is
controlled from the tray icon, a global hotkey, the linereader CLI or
the D-Bus interface io.github.jmylchreest.LineReader.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Flags(), &opts)
		},
	}
	opts.register(cmd.Flags())
	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func run(flags *pflag.FlagSet, opts *options) error {
	logger := newLogger(opts.verbose)
	slog.SetDefault(logger)
	logger.Info("starting linereaderd", "version", version)

	path := opts.config
	if path == "" {
		var err error
		path, err = config.DaemonConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	fileCfg, err := config.LoadDaemonConfigFrom(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := opts.merge(flags, fileCfg)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", "path", path, "backend", cfg.Sampler.Backend, "hotkey", cfg.Hotkey.Combo)

	return newLineReader(fileCfg, cfg, path, flags, opts, logger).Run()
}
