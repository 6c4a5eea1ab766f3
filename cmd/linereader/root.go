package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/linereader/internal/control"
	"github.com/jmylchreest/linereader/internal/dbus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	globalOpts struct {
		verbose bool
		timeout time.Duration
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "linereader",
	Short: "Control the linereaderd reading guide",
	Long: `linereader controls a running linereaderd daemon over D-Bus.

The daemon draws a translucent band that follows the mouse pointer to help
keep your place while reading. Use this command to switch the band on and
off, inspect its state and change its height, offset and color.

Bind 'linereader toggle' to a key in your compositor on Wayland, where
applications cannot grab global hotkeys.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&globalOpts.timeout, "timeout", 5*time.Second,
		"Timeout for daemon requests")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// withClient runs fn against the daemon with the request timeout applied.
func withClient(fn func(ctx context.Context, client *dbus.Client) error) error {
	client, err := dbus.Connect()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), globalOpts.timeout)
	defer cancel()

	return explain(fn(ctx, client))
}

// explain adds a hint to errors the user can act on.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dbus.ErrNotRunning):
		return fmt.Errorf("%w: start linereaderd first", err)
	case errors.Is(err, control.ErrSessionBusy):
		return fmt.Errorf("%w: close the open settings editor first", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("daemon did not answer within %s: %w", globalOpts.timeout, err)
	}
	return err
}
