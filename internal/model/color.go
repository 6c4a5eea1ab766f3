// Package model defines the core data structures for linereader.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned when a color string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Color is an 8-bit per channel RGBA color.
type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// RGBA returns a Color from its four channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ParseColor parses a hex color in the form rrggbbaa or rrggbb.
// A leading '#' is accepted. Six digit colors are fully opaque.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 6:
		hex += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("%w %q: expected 6 or 8 hex digits", ErrInvalidColor, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}

	return Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// Hex formats the color as lowercase rrggbbaa.
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return fmt.Sprintf("RGBA(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
}

// Float returns the channels scaled to 0.0-1.0, as cairo expects them.
func (c Color) Float() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}
