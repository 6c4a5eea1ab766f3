package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/linereader/internal/dbus"
	"github.com/jmylchreest/linereader/internal/tui"
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Adjust the reading band in the terminal",
	Long: `Open an interactive editor for the band settings. Every change is shown
on screen immediately. Accept with 'a' to keep the new settings, or press
'q' to restore the previous ones.

Only one settings editor can be open at a time. If the daemon's settings
window is open, close it first.`,
	Args: cobra.NoArgs,
	RunE: runTune,
}

func init() {
	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
	client, err := dbus.Connect()
	if err != nil {
		return err
	}
	// Closing the connection also ends the session on the daemon side.
	defer func() { _ = client.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome, settings, err := tui.Run(ctx, client)
	if err != nil {
		return explain(err)
	}

	fmt.Printf("Settings %s: height %d, offset %d, color %s\n",
		outcome, settings.Height, settings.Offset, settings.Color.Hex())
	return nil
}
