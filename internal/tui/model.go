// Package tui provides the BubbleTea-based terminal settings editor. It
// drives a settings session on the running daemon: every change is
// previewed on the overlay and the session ends with accept or cancel.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/linereader/internal/form"
	"github.com/jmylchreest/linereader/internal/model"
)

// Session is the daemon side of a settings session.
type Session interface {
	BeginSettings(ctx context.Context) (model.Settings, error)
	PreviewSettings(ctx context.Context, s model.Settings) error
	AcceptSettings(ctx context.Context) error
	RejectSettings(ctx context.Context) error
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeForm Mode = iota
	ModeEdit
	ModeColor
	ModeHelp
)

// Outcome is how the session ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeAccepted
	OutcomeRejected
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "none"
	}
}

// bigStep is the increment for IncreaseMore and DecreaseMore.
const bigStep = 10

// Model is the settings editor model.
type Model struct {
	ctx     context.Context
	session Session

	mode   Mode
	fields []form.Field
	cursor int

	original model.Settings
	current  model.Settings

	input textinput.Model
	help  help.Model
	keys  KeyMap

	width  int
	height int
	ready  bool

	statusMsg string
	statusErr bool

	outcome Outcome
	err     error
}

// New creates an editor for a session that has already begun with original.
func New(ctx context.Context, session Session, original model.Settings) Model {
	input := textinput.New()
	input.CharLimit = 9

	h := help.New()
	h.ShowAll = true

	return Model{
		ctx:      ctx,
		session:  session,
		mode:     ModeForm,
		fields:   form.Fields(),
		original: original,
		current:  original,
		input:    input,
		help:     h,
		keys:     DefaultKeyMap(),
	}
}

// Settings returns the settings shown in the editor.
func (m Model) Settings() model.Settings {
	return m.current
}

// Outcome returns how the session ended.
func (m Model) Outcome() Outcome {
	return m.outcome
}

// Err returns the error that ended the editor, if any.
func (m Model) Err() error {
	return m.err
}

// Selected returns the field under the cursor.
func (m Model) Selected() form.Field {
	return m.fields[m.cursor]
}

// Init initializes the editor.
func (m Model) Init() tea.Cmd {
	return nil
}

type previewResultMsg struct {
	err error
}

type doneMsg struct {
	outcome Outcome
	err     error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case previewResultMsg:
		if msg.err != nil {
			return m.setStatus("Preview failed: "+msg.err.Error(), true)
		}
		return m, nil

	case doneMsg:
		m.outcome = msg.outcome
		m.err = msg.err
		return m, tea.Quit

	case statusMsg:
		return m.setStatus(msg.text, msg.isErr)

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	if m.mode == ModeEdit || m.mode == ModeColor {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.statusMsg = text
	m.statusErr = isErr
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeEdit, ModeColor:
		return m.handleInputKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Reject) {
			m.mode = ModeForm
		}
		return m, nil
	}
	return m.handleFormKey(msg)
}

// handleFormKey handles keys while navigating the fields.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Reject):
		return m, m.finish(OutcomeRejected)

	case key.Matches(msg, m.keys.Accept):
		return m, m.finish(OutcomeAccepted)

	case key.Matches(msg, m.keys.Up):
		m.cursor = (m.cursor + len(m.fields) - 1) % len(m.fields)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.fields)
		return m, nil

	case key.Matches(msg, m.keys.Increase):
		return m.adjust(m.Selected().Step)

	case key.Matches(msg, m.keys.Decrease):
		return m.adjust(-m.Selected().Step)

	case key.Matches(msg, m.keys.IncreaseMore):
		return m.adjust(bigStep * m.Selected().Step)

	case key.Matches(msg, m.keys.DecreaseMore):
		return m.adjust(-bigStep * m.Selected().Step)

	case key.Matches(msg, m.keys.Reset):
		if m.current == m.original {
			return m, nil
		}
		return m.preview(m.original)

	case key.Matches(msg, m.keys.Edit):
		m.mode = ModeEdit
		m.input.Placeholder = fmt.Sprintf("%d..%d", m.Selected().Min, m.Selected().Max)
		m.input.SetValue(m.Selected().Format(m.current))
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.EditColor):
		m.mode = ModeColor
		m.input.Placeholder = "rrggbbaa"
		m.input.SetValue(m.current.Color.Hex())
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

// handleInputKey handles keys while typing a value.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeForm
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		next, err := m.parseInput()
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		m.mode = ModeForm
		m.input.Blur()
		if next == m.current {
			return m, nil
		}
		return m.preview(next)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) parseInput() (model.Settings, error) {
	text := m.input.Value()
	if m.mode == ModeColor {
		c, err := model.ParseColor(text)
		if err != nil {
			return m.current, err
		}
		return m.current.WithColor(c), nil
	}
	f := m.Selected()
	v, err := f.Parse(text)
	if err != nil {
		return m.current, err
	}
	return f.Set(m.current, v), nil
}

// adjust moves the selected field by delta, clamped to its range.
func (m Model) adjust(delta int) (tea.Model, tea.Cmd) {
	f := m.Selected()
	next := f.Set(m.current, f.Get(m.current)+delta)
	if next == m.current {
		return m, nil
	}
	return m.preview(next)
}

// preview shows next in the editor and sends it to the daemon.
func (m Model) preview(next model.Settings) (tea.Model, tea.Cmd) {
	m.current = next
	ctx, session := m.ctx, m.session
	return m, func() tea.Msg {
		return previewResultMsg{err: session.PreviewSettings(ctx, next)}
	}
}

// finish ends the session on the daemon and quits.
func (m Model) finish(outcome Outcome) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		var err error
		if outcome == OutcomeAccepted {
			err = session.AcceptSettings(ctx)
		} else {
			err = session.RejectSettings(ctx)
		}
		return doneMsg{outcome: outcome, err: err}
	}
}

// View renders the editor.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.mode == ModeHelp {
		return m.viewHelp()
	}
	return m.viewForm()
}

func (m Model) viewForm() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Width(8)
	valueStyle := lipgloss.NewStyle().Width(6).Align(lipgloss.Right)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Line Reader Settings"))
	b.WriteString("\n")

	for i, f := range m.fields {
		marker := "  "
		label := labelStyle.Render(f.Label)
		value := valueStyle.Render(f.Format(m.current))
		if i == m.cursor {
			marker = selectedStyle.Render("> ")
			label = selectedStyle.Render(label)
		}
		line := marker + label + " " + value
		if i == m.cursor && m.mode == ModeEdit {
			line = marker + label + " " + m.input.View()
		}
		b.WriteString(line + "  " + dimStyle.Render(f.Help) + "\n")
	}

	b.WriteString("\n")
	colorLine := "  " + labelStyle.Render("Color") + " " + swatch(m.current.Color) + " " + m.current.Color.Hex()
	if m.mode == ModeColor {
		colorLine = "  " + labelStyle.Render("Color") + " " + swatch(m.current.Color) + " " + m.input.View()
	}
	b.WriteString(colorLine + "\n")

	if m.current != m.original {
		b.WriteString(dimStyle.Render("  modified, original "+describe(m.original)) + "\n")
	}

	b.WriteString("\n")
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		b.WriteString(statusStyle.Render(m.statusMsg))
	} else {
		b.WriteString(m.buildKeybindBar(m.width))
	}
	return b.String()
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.View(m.keys) + "\n\n"
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
	return s
}

// swatch renders the band color over the terminal background.
// Terminals have no alpha so the color is shown opaque.
func swatch(c model.Color) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))).
		Render("      ")
}

func describe(s model.Settings) string {
	return fmt.Sprintf("height %d, offset %d, color %s", s.Height, s.Offset, s.Color.Hex())
}

// keybind is one entry of the status bar, most important first.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	binds := []keybind{
		{"a", "accept"},
		{"q", "cancel"},
		{"←/→", "adjust"},
		{"↑/↓", "field"},
		{"enter", "type"},
		{"#", "color"},
		{"r", "reset"},
		{"?", "help"},
	}
	if m.mode == ModeEdit || m.mode == ModeColor {
		binds = []keybind{
			{"enter", "apply"},
			{"esc", "cancel"},
		}
	}

	const separator = "  "
	result := ""
	plainLen := 0
	for _, b := range binds {
		plain := b.key + " " + b.desc
		testLen := plainLen + len([]rune(plain))
		if result != "" {
			testLen += len(separator)
		}
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += keyStyle.Render(b.key) + " " + b.desc
		plainLen = testLen
	}

	return style.Render(result)
}

// Run begins a settings session, runs the editor and makes sure the
// session is ended whatever happens to the program.
func Run(ctx context.Context, session Session) (Outcome, model.Settings, error) {
	original, err := session.BeginSettings(ctx)
	if err != nil {
		return OutcomeNone, model.Settings{}, fmt.Errorf("failed to begin settings session: %w", err)
	}

	m := New(ctx, session, original)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, runErr := p.Run()
	fm, ok := final.(Model)
	if !ok || fm.Outcome() == OutcomeNone {
		if err := session.RejectSettings(context.WithoutCancel(ctx)); err != nil && runErr == nil {
			runErr = err
		}
		return OutcomeRejected, original, runErr
	}
	if runErr == nil {
		runErr = fm.Err()
	}
	if fm.Outcome() == OutcomeRejected {
		return OutcomeRejected, original, runErr
	}
	return fm.Outcome(), fm.Settings(), runErr
}
