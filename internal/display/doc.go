// Package display implements the GTK4 side of the overlay: Wayland
// layer-shell band windows (one per monitor), the glib sampling timer and
// the settings window.
package display
