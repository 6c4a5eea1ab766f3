// Package dbus exposes the linereader daemon on the session bus as
// io.github.jmylchreest.LineReader and provides the client used by the
// linereader command line tool.
package dbus
