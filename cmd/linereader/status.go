package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/linereader/internal/dbus"
)

// Output formats for status.
const (
	formatPlain = "plain"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var statusOpts struct {
	output string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the reading band state and settings",
	Long: `Show whether the reading band is active, since when, and the current
height, offset and color.

Machine readable output is available for status bars:

  linereader status --output json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.output, "output", "o", formatPlain,
		"Output format (plain, json, yaml)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		state, err := client.State(ctx)
		if err != nil {
			return err
		}
		return formatStatus(os.Stdout, state, statusOpts.output, time.Now())
	})
}

// statusDoc is the json/yaml shape of the status output.
type statusDoc struct {
	Active bool   `json:"active" yaml:"active"`
	Since  *int64 `json:"since,omitempty" yaml:"since,omitempty"`
	Height int    `json:"height" yaml:"height"`
	Offset int    `json:"offset" yaml:"offset"`
	Color  string `json:"color" yaml:"color"`
}

func newStatusDoc(state dbus.State) statusDoc {
	doc := statusDoc{
		Active: state.Active,
		Height: state.Settings.Height,
		Offset: state.Settings.Offset,
		Color:  state.Settings.Color.Hex(),
	}
	if state.Active && !state.Since.IsZero() {
		since := state.Since.Unix()
		doc.Since = &since
	}
	return doc
}

// formatStatus writes state in the given format. now anchors relative times.
func formatStatus(w io.Writer, state dbus.State, format string, now time.Time) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newStatusDoc(state))

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newStatusDoc(state)); err != nil {
			return err
		}
		return enc.Close()

	case formatPlain, "":
		line := "Reading band: " + stateName(state.Active)
		if state.Active && !state.Since.IsZero() {
			line += fmt.Sprintf(" (since %s)", humanize.RelTime(state.Since, now, "ago", "from now"))
		}
		_, err := fmt.Fprintf(w, "%s\n  Height: %d\n  Offset: %d\n  Color:  %s\n",
			line, state.Settings.Height, state.Settings.Offset, state.Settings.Color.Hex())
		return err
	}
	return fmt.Errorf("unknown output format %q (use plain, json or yaml)", format)
}
