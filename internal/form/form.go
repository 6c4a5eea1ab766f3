// Package form describes the editable band settings as a fixed field
// schema. Settings surfaces (the GTK window and the terminal editor) bind
// their widgets to these fields instead of reflecting over a struct.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/linereader/internal/model"
)

// ErrUnknownField is returned for keys that are not part of the schema.
var ErrUnknownField = errors.New("unknown field")

// Field keys.
const (
	KeyHeight = "height"
	KeyOffset = "offset"
	KeyRed    = "red"
	KeyGreen  = "green"
	KeyBlue   = "blue"
	KeyAlpha  = "alpha"
)

// Field is one integer-valued setting.
type Field struct {
	Key   string
	Label string
	Help  string
	Min   int
	Max   int
	Step  int

	get func(model.Settings) int
	set func(model.Settings, int) model.Settings
}

// Get reads the field from a settings snapshot.
func (f Field) Get(s model.Settings) int {
	return f.get(s)
}

// Set returns a copy of s with the field replaced by the clamped value.
func (f Field) Set(s model.Settings, v int) model.Settings {
	return f.set(s, f.Clamp(v))
}

// Clamp limits v to the field range.
func (f Field) Clamp(v int) int {
	return max(f.Min, min(f.Max, v))
}

// Parse converts user input to a field value. Out of range values are an
// error rather than silently clamped.
func (f Field) Parse(text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", f.Label, text)
	}
	if v < f.Min || v > f.Max {
		return 0, fmt.Errorf("%s must be between %d and %d", f.Label, f.Min, f.Max)
	}
	return v, nil
}

// Format renders the field value of s for a text widget.
func (f Field) Format(s model.Settings) string {
	return strconv.Itoa(f.Get(s))
}

func channel(key, label string, get func(model.Color) uint8, set func(*model.Color, uint8)) Field {
	return Field{
		Key:   key,
		Label: label,
		Help:  label + " channel (0-255)",
		Min:   0,
		Max:   255,
		Step:  1,
		get:   func(s model.Settings) int { return int(get(s.Color)) },
		set: func(s model.Settings, v int) model.Settings {
			c := s.Color
			set(&c, uint8(v))
			return s.WithColor(c)
		},
	}
}

var fields = []Field{
	{
		Key:   KeyHeight,
		Label: "Height",
		Help:  "Band height in pixels",
		Min:   0,
		Max:   model.MaxHeight,
		Step:  1,
		get:   func(s model.Settings) int { return s.Height },
		set:   func(s model.Settings, v int) model.Settings { return s.WithHeight(v) },
	},
	{
		Key:   KeyOffset,
		Label: "Offset",
		Help:  "Vertical offset from the cursor in pixels",
		Min:   -model.MaxOffset,
		Max:   model.MaxOffset,
		Step:  1,
		get:   func(s model.Settings) int { return s.Offset },
		set:   func(s model.Settings, v int) model.Settings { return s.WithOffset(v) },
	},
	channel(KeyRed, "Red", func(c model.Color) uint8 { return c.R }, func(c *model.Color, v uint8) { c.R = v }),
	channel(KeyGreen, "Green", func(c model.Color) uint8 { return c.G }, func(c *model.Color, v uint8) { c.G = v }),
	channel(KeyBlue, "Blue", func(c model.Color) uint8 { return c.B }, func(c *model.Color, v uint8) { c.B = v }),
	channel(KeyAlpha, "Alpha", func(c model.Color) uint8 { return c.A }, func(c *model.Color, v uint8) { c.A = v }),
}

// Fields returns the schema in display order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the field with the given key.
func Lookup(key string) (Field, error) {
	for _, f := range fields {
		if f.Key == key {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%w %q", ErrUnknownField, key)
}

// Apply sets one field by key.
func Apply(s model.Settings, key string, v int) (model.Settings, error) {
	f, err := Lookup(key)
	if err != nil {
		return s, err
	}
	return f.Set(s, v), nil
}

// Values returns every field value of s keyed by field key.
func Values(s model.Settings) map[string]int {
	out := make(map[string]int, len(fields))
	for _, f := range fields {
		out[f.Key] = f.Get(s)
	}
	return out
}
