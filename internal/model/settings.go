package model

import (
	"errors"
	"fmt"
)

// Default band settings.
const (
	DefaultHeight = 20
	DefaultOffset = 0
	DefaultColor  = "ff800120"

	// MaxHeight bounds the band height.
	MaxHeight = 2000
	// MaxOffset bounds the absolute band offset.
	MaxOffset = 2000
)

var (
	ErrHeightRange = errors.New("height out of range")
	ErrOffsetRange = errors.New("offset out of range")
)

// Settings is an immutable snapshot of the band appearance.
// Settings values are replaced as a whole, never edited in place.
type Settings struct {
	Height int   `toml:"height" json:"height" yaml:"height"`
	Offset int   `toml:"offset" json:"offset" yaml:"offset"`
	Color  Color `toml:"color" json:"color" yaml:"color"`
}

// DefaultSettings returns the built-in band settings.
func DefaultSettings() Settings {
	return Settings{
		Height: DefaultHeight,
		Offset: DefaultOffset,
		Color:  RGBA(255, 128, 1, 32),
	}
}

// WithHeight returns a copy with Height replaced.
func (s Settings) WithHeight(h int) Settings {
	s.Height = h
	return s
}

// WithOffset returns a copy with Offset replaced.
func (s Settings) WithOffset(o int) Settings {
	s.Offset = o
	return s
}

// WithColor returns a copy with Color replaced.
func (s Settings) WithColor(c Color) Settings {
	s.Color = c
	return s
}

// Validate checks the settings against the allowed ranges.
func (s Settings) Validate() error {
	if s.Height < 0 || s.Height > MaxHeight {
		return fmt.Errorf("%w: height must be between 0 and %d, got %d", ErrHeightRange, MaxHeight, s.Height)
	}
	if s.Offset < -MaxOffset || s.Offset > MaxOffset {
		return fmt.Errorf("%w: offset must be between %d and %d, got %d", ErrOffsetRange, -MaxOffset, MaxOffset, s.Offset)
	}
	return nil
}

// Band is the single highlight rectangle drawn by the overlay.
type Band struct {
	Rect  Rect
	Color Color
}

// ComputeBand returns the band for a window-relative cursor sample.
// The band spans the full window width and covers
// [y+offset-height/2, y+offset+height/2].
func ComputeBand(sample Point, s Settings, width int) Band {
	half := s.Height / 2
	top := sample.Y + s.Offset - half
	bottom := sample.Y + s.Offset + half
	return Band{
		Rect: Rect{
			X:      0,
			Y:      top,
			Width:  width,
			Height: bottom - top,
		},
		Color: s.Color,
	}
}
