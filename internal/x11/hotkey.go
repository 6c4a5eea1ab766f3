package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// ErrHotkeyGrab is returned when the hotkey cannot be grabbed.
var ErrHotkeyGrab = errors.New("failed to grab hotkey")

// BindHotkey grabs combo (xgbutil syntax, e.g. "Mod4-Shift-l") on the root
// window. fn runs on the X event goroutine.
func (c *Conn) BindHotkey(combo string, fn func()) error {
	keybind.Initialize(c.xu)

	if len(keybind.StrToKeycodes(c.xu, lastKey(combo))) == 0 {
		return fmt.Errorf("%w: no keycode for %q", ErrHotkeyGrab, combo)
	}

	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		c.logger.Debug("hotkey pressed", "combo", combo)
		fn()
	}).Connect(c.xu, c.xu.RootWin(), combo, true)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrHotkeyGrab, combo, err)
	}

	c.logger.Info("hotkey bound", "combo", combo)
	return nil
}

// UnbindHotkeys releases every grab on the root window.
func (c *Conn) UnbindHotkeys() {
	keybind.Detach(c.xu, c.xu.RootWin())
}

// lastKey returns the key part of an xgbutil combo.
func lastKey(combo string) string {
	for i := len(combo) - 1; i >= 0; i-- {
		if combo[i] == '-' {
			return combo[i+1:]
		}
	}
	return combo
}
