package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHotkey is returned for combos that cannot be parsed.
var ErrInvalidHotkey = errors.New("invalid hotkey")

// modifierNames maps user-facing modifier names to X11 modifier names.
var modifierNames = map[string]string{
	"super":   "Mod4",
	"mod4":    "Mod4",
	"win":     "Mod4",
	"logo":    "Mod4",
	"shift":   "Shift",
	"ctrl":    "Control",
	"control": "Control",
	"alt":     "Mod1",
	"mod1":    "Mod1",
}

// modifierOrder fixes the output order so equal combos format identically.
var modifierOrder = []string{"Control", "Mod1", "Mod4", "Shift"}

// Hotkey is a parsed key combination.
type Hotkey struct {
	Modifiers []string // X11 modifier names in canonical order
	Key       string   // keysym name, e.g. "l"
}

// ParseHotkey parses a combo such as "super+shift+l".
// Modifier names are case-insensitive; the key is kept verbatim.
func ParseHotkey(combo string) (Hotkey, error) {
	parts := strings.Split(strings.TrimSpace(combo), "+")
	if len(parts) == 0 || strings.TrimSpace(parts[len(parts)-1]) == "" {
		return Hotkey{}, fmt.Errorf("%w: %q has no key", ErrInvalidHotkey, combo)
	}

	seen := make(map[string]bool)
	for _, p := range parts[:len(parts)-1] {
		name, ok := modifierNames[strings.ToLower(strings.TrimSpace(p))]
		if !ok {
			return Hotkey{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidHotkey, p)
		}
		seen[name] = true
	}

	hk := Hotkey{Key: strings.TrimSpace(parts[len(parts)-1])}
	if _, isMod := modifierNames[strings.ToLower(hk.Key)]; isMod {
		return Hotkey{}, fmt.Errorf("%w: %q ends with a modifier", ErrInvalidHotkey, combo)
	}
	for _, m := range modifierOrder {
		if seen[m] {
			hk.Modifiers = append(hk.Modifiers, m)
		}
	}
	return hk, nil
}

// X11 returns the combo in xgbutil keybind syntax, e.g. "Mod4-Shift-l".
func (h Hotkey) X11() string {
	return strings.Join(append(append([]string{}, h.Modifiers...), h.Key), "-")
}

// String returns the combo in the config file syntax.
func (h Hotkey) String() string {
	names := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		switch m {
		case "Mod4":
			names = append(names, "super")
		case "Mod1":
			names = append(names, "alt")
		case "Control":
			names = append(names, "ctrl")
		default:
			names = append(names, strings.ToLower(m))
		}
	}
	return strings.Join(append(names, h.Key), "+")
}
