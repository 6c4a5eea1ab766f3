// Package theme provides the CSS for the band and settings windows.
package theme

import (
	"embed"
)

// embedded contains the bundled stylesheet.
//
//go:embed themes/*.css
var embedded embed.FS

// DefaultCSS returns the bundled stylesheet.
func DefaultCSS() string {
	data, err := embedded.ReadFile("themes/default.css")
	if err != nil {
		return ""
	}
	return string(data)
}
