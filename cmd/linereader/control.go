package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/linereader/internal/dbus"
)

var controlOpts struct {
	quiet bool // Suppress output, return exit code only
}

// toggleCmd toggles the overlay.
var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle the reading band",
	Long:  `Switch the reading band on if it is off, and off if it is on.`,
	Args:  cobra.NoArgs,
	RunE:  toggleRun,
}

// onCmd enables the overlay.
var onCmd = &cobra.Command{
	Use:     "on",
	Aliases: []string{"enable"},
	Short:   "Show the reading band",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *dbus.Client) error {
			if err := client.Enable(ctx); err != nil {
				return err
			}
			printState(true)
			return nil
		})
	},
}

// offCmd disables the overlay.
var offCmd = &cobra.Command{
	Use:     "off",
	Aliases: []string{"disable"},
	Short:   "Hide the reading band",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *dbus.Client) error {
			if err := client.Disable(ctx); err != nil {
				return err
			}
			printState(false)
			return nil
		})
	},
}

// settingsCmd opens the graphical settings window.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Open the settings window",
	Long: `Open the daemon's settings window. Changes are previewed live and
only kept when you press OK. Use 'linereader tune' for a terminal editor.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *dbus.Client) error {
			return client.OpenSettings(ctx)
		})
	},
}

// quitCmd stops the daemon.
var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Stop linereaderd",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, client *dbus.Client) error {
			return client.Quit(ctx)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{toggleCmd, onCmd, offCmd} {
		cmd.Flags().BoolVarP(&controlOpts.quiet, "quiet", "q", false,
			"Suppress output")
	}
	rootCmd.AddCommand(toggleCmd, onCmd, offCmd, settingsCmd, quitCmd)
}

func toggleRun(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		active, err := client.Toggle(ctx)
		if err != nil {
			return err
		}
		printState(active)
		return nil
	})
}

func printState(active bool) {
	if controlOpts.quiet {
		return
	}
	fmt.Printf("Reading band: %s\n", stateName(active))
}

func stateName(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
