package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/linereader/internal/control"
	"github.com/jmylchreest/linereader/internal/form"
	"github.com/jmylchreest/linereader/internal/model"
)

// SettingsWindow is the band settings editor. It implements
// control.SettingsSurface and reports edits as control events.
type SettingsWindow struct {
	app    *gtk.Application
	logger *slog.Logger

	window *gtk.Window
	spins  map[string]*gtk.SpinButton
	swatch *gtk.DrawingArea

	values model.Settings
	// populating suppresses value-changed events while Open fills the spins.
	populating bool
	open       bool

	onEvent func(control.Event)
}

// NewSettingsWindow creates the (hidden) settings window.
func NewSettingsWindow(app *gtk.Application, logger *slog.Logger) *SettingsWindow {
	if logger == nil {
		logger = slog.Default()
	}
	w := &SettingsWindow{
		app:    app,
		logger: logger,
		spins:  make(map[string]*gtk.SpinButton),
	}
	w.build()
	return w
}

// SetEventCallback sets the callback for accept, reject and adjust events.
func (w *SettingsWindow) SetEventCallback(cb func(control.Event)) {
	w.onEvent = cb
}

func (w *SettingsWindow) build() {
	w.window = gtk.NewWindow()
	w.window.SetApplication(w.app)
	w.window.SetTitle("Line Reader Options")
	w.window.SetResizable(false)
	w.window.SetHideOnClose(true)
	w.window.AddCSSClass("linereader-settings")

	header := gtk.NewHeaderBar()
	w.window.SetTitlebar(header)

	box := gtk.NewBox(gtk.OrientationVertical, 12)
	box.SetMarginTop(12)
	box.SetMarginBottom(12)
	box.SetMarginStart(12)
	box.SetMarginEnd(12)

	grid := gtk.NewGrid()
	grid.SetRowSpacing(6)
	grid.SetColumnSpacing(12)

	for row, field := range form.Fields() {
		label := gtk.NewLabel(field.Label)
		label.SetXAlign(0)
		label.SetTooltipText(field.Help)
		grid.Attach(label, 0, row, 1, 1)

		spin := gtk.NewSpinButtonWithRange(float64(field.Min), float64(field.Max), float64(field.Step))
		spin.SetDigits(0)
		spin.SetNumeric(true)
		spin.SetHExpand(true)
		spin.ConnectValueChanged(w.onValueChanged)
		grid.Attach(spin, 1, row, 1, 1)
		w.spins[field.Key] = spin
	}
	box.Append(grid)

	w.swatch = gtk.NewDrawingArea()
	w.swatch.SetContentHeight(24)
	w.swatch.AddCSSClass("swatch")
	w.swatch.SetDrawFunc(func(_ *gtk.DrawingArea, cr *cairo.Context, width, height int) {
		r, g, b, a := w.values.Color.Float()
		cr.SetSourceRGBA(r, g, b, a)
		cr.Rectangle(0, 0, float64(width), float64(height))
		cr.Fill()
	})
	box.Append(w.swatch)

	buttons := gtk.NewBox(gtk.OrientationHorizontal, 6)
	buttons.SetHAlign(gtk.AlignEnd)

	cancel := gtk.NewButtonWithLabel("Cancel")
	cancel.ConnectClicked(w.reject)
	buttons.Append(cancel)

	ok := gtk.NewButtonWithLabel("OK")
	ok.AddCSSClass("suggested-action")
	ok.ConnectClicked(w.accept)
	buttons.Append(ok)

	box.Append(buttons)
	w.window.SetChild(box)
	w.window.SetDefaultWidget(ok)

	// Closing from the title bar counts as Cancel.
	w.window.ConnectCloseRequest(func() bool {
		if w.open {
			w.reject()
		}
		return false
	})
}

// Open implements control.SettingsSurface.
func (w *SettingsWindow) Open(current model.Settings) {
	w.values = current
	w.populating = true
	for _, field := range form.Fields() {
		w.spins[field.Key].SetValue(float64(field.Get(current)))
	}
	w.populating = false
	w.swatch.QueueDraw()

	w.open = true
	w.window.Present()
	w.logger.Debug("settings window opened")
}

// Present implements control.SettingsSurface.
func (w *SettingsWindow) Present() {
	w.window.Present()
}

// Close implements control.SettingsSurface.
func (w *SettingsWindow) Close() {
	w.open = false
	w.window.SetVisible(false)
}

// read collects the spin values into a settings value.
func (w *SettingsWindow) read() model.Settings {
	s := w.values
	for _, field := range form.Fields() {
		s = field.Set(s, w.spins[field.Key].ValueAsInt())
	}
	return s
}

func (w *SettingsWindow) onValueChanged() {
	if w.populating || !w.open {
		return
	}
	w.values = w.read()
	w.swatch.QueueDraw()
	w.emit(control.DialogValueAdjusted(w.values))
}

func (w *SettingsWindow) accept() {
	w.values = w.read()
	w.emit(control.DialogAccepted(w.values))
}

func (w *SettingsWindow) reject() {
	w.emit(control.DialogRejected())
}

func (w *SettingsWindow) emit(ev control.Event) {
	if w.onEvent != nil {
		w.onEvent(ev)
	}
}
