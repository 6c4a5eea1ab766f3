package theme

import (
	"os"
	"path/filepath"
	"time"
)

// Theme is a loaded stylesheet.
type Theme struct {
	Path     string    // User stylesheet path, empty for the bundled one
	CSS      string    // The CSS content
	ModTime  time.Time // Last modification time of Path
	Embedded bool      // True if the bundled stylesheet is in use
}

// StylePath returns the path of the user stylesheet.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func StylePath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "linereader", "style.css"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "linereader", "style.css"), nil
}

// NewDefaultTheme returns the bundled stylesheet.
func NewDefaultTheme() *Theme {
	return &Theme{CSS: DefaultCSS(), Embedded: true}
}

// Load reads the stylesheet at path. A missing file yields the bundled
// stylesheet; other read errors are returned.
func Load(path string) (*Theme, error) {
	if path == "" {
		return NewDefaultTheme(), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			t := NewDefaultTheme()
			t.Path = path
			return t, nil
		}
		return nil, err
	}

	css, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &Theme{
		Path:    path,
		CSS:     string(css),
		ModTime: info.ModTime(),
	}, nil
}

// Reload rereads the file and reports whether the CSS changed. A removed
// user stylesheet falls back to the bundled one.
func (t *Theme) Reload() (bool, error) {
	if t.Path == "" {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if os.IsNotExist(err) {
		if t.Embedded {
			return false, nil
		}
		t.CSS = DefaultCSS()
		t.ModTime = time.Time{}
		t.Embedded = true
		return true, nil
	}
	if err != nil {
		return false, err
	}

	css, err := os.ReadFile(t.Path)
	if err != nil {
		return false, err
	}

	changed := t.Embedded || string(css) != t.CSS
	t.CSS = string(css)
	t.ModTime = info.ModTime()
	t.Embedded = false
	return changed, nil
}
