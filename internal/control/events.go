// Package control routes activation triggers (hotkey, tray, menu, settings
// surfaces and D-Bus) to overlay commands through a flat event table.
package control

import "github.com/jmylchreest/linereader/internal/model"

// EventKind identifies the trigger source.
type EventKind int

const (
	EventHotkeyTriggered EventKind = iota
	EventTrayActivated
	EventMenuAction
	EventDialogAccepted
	EventDialogRejected
	EventDialogValueAdjusted
	EventRemoteCommand
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventHotkeyTriggered:
		return "hotkey"
	case EventTrayActivated:
		return "tray"
	case EventMenuAction:
		return "menu"
	case EventDialogAccepted:
		return "dialog-accepted"
	case EventDialogRejected:
		return "dialog-rejected"
	case EventDialogValueAdjusted:
		return "dialog-adjusted"
	case EventRemoteCommand:
		return "remote"
	default:
		return "unknown"
	}
}

// TrayKind is the kind of tray icon activation.
type TrayKind string

const (
	TrayPrimary TrayKind = "primary"
	TrayDouble  TrayKind = "double"
	TrayMiddle  TrayKind = "middle"
)

// MenuItem names a tray menu entry.
type MenuItem string

const (
	MenuOptions MenuItem = "options"
	MenuToggle  MenuItem = "toggle"
	MenuExit    MenuItem = "exit"
)

// Command is a logical overlay command.
type Command int

const (
	CommandNone Command = iota
	CommandToggle
	CommandEnable
	CommandDisable
	CommandOpenSettings
	CommandExit
)

// String returns the string representation of the command.
func (c Command) String() string {
	switch c {
	case CommandToggle:
		return "toggle"
	case CommandEnable:
		return "enable"
	case CommandDisable:
		return "disable"
	case CommandOpenSettings:
		return "open-settings"
	case CommandExit:
		return "exit"
	default:
		return "none"
	}
}

// Event is one activation trigger.
type Event struct {
	Kind     EventKind
	Tray     TrayKind
	Menu     MenuItem
	Command  Command
	Settings model.Settings
}

// HotkeyTriggered is emitted when the global hotkey fires.
func HotkeyTriggered() Event {
	return Event{Kind: EventHotkeyTriggered}
}

// TrayActivated is emitted for clicks on the tray icon.
func TrayActivated(kind TrayKind) Event {
	return Event{Kind: EventTrayActivated, Tray: kind}
}

// MenuAction is emitted when a tray menu item is chosen.
func MenuAction(item MenuItem) Event {
	return Event{Kind: EventMenuAction, Menu: item}
}

// DialogAccepted carries the final values of an accepted settings surface.
func DialogAccepted(s model.Settings) Event {
	return Event{Kind: EventDialogAccepted, Settings: s}
}

// DialogRejected is emitted when a settings surface is cancelled or closed.
func DialogRejected() Event {
	return Event{Kind: EventDialogRejected}
}

// DialogValueAdjusted carries intermediate values for live preview.
func DialogValueAdjusted(s model.Settings) Event {
	return Event{Kind: EventDialogValueAdjusted, Settings: s}
}

// RemoteCommand wraps a command received from another process.
func RemoteCommand(cmd Command) Event {
	return Event{Kind: EventRemoteCommand, Command: cmd}
}
