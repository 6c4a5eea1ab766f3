package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/linereader/internal/form"
	"github.com/jmylchreest/linereader/internal/model"
)

type fakeSession struct {
	previews   []model.Settings
	accepted   int
	rejected   int
	previewErr error
}

func (s *fakeSession) BeginSettings(context.Context) (model.Settings, error) {
	return model.DefaultSettings(), nil
}

func (s *fakeSession) PreviewSettings(_ context.Context, st model.Settings) error {
	s.previews = append(s.previews, st)
	return s.previewErr
}

func (s *fakeSession) AcceptSettings(context.Context) error {
	s.accepted++
	return nil
}

func (s *fakeSession) RejectSettings(context.Context) error {
	s.rejected++
	return nil
}

func newTestModel() (Model, *fakeSession) {
	s := &fakeSession{}
	m := New(context.Background(), s, model.DefaultSettings())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), s
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// run executes cmd, giving up on timers such as cursor blink and status
// expiry.
func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// press sends keys and runs any returned command once, feeding its message
// back into the model.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = next.(Model)
		msg := run(cmd)
		if msg == nil {
			continue
		}
		if _, quit := msg.(tea.QuitMsg); quit {
			continue
		}
		next, _ = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func TestNavigation(t *testing.T) {
	m, _ := newTestModel()
	assert.Equal(t, form.KeyHeight, m.Selected().Key)

	m = press(t, m, "down")
	assert.Equal(t, form.KeyOffset, m.Selected().Key)

	m = press(t, m, "j", "j")
	assert.Equal(t, form.KeyGreen, m.Selected().Key)

	// Wraps around both ends.
	m = press(t, m, "up", "up", "up", "up")
	assert.Equal(t, form.KeyAlpha, m.Selected().Key)
	m = press(t, m, "down")
	assert.Equal(t, form.KeyHeight, m.Selected().Key)
}

func TestAdjustPreviews(t *testing.T) {
	m, s := newTestModel()

	m = press(t, m, "right")
	assert.Equal(t, 21, m.Settings().Height)
	require.Len(t, s.previews, 1)
	assert.Equal(t, 21, s.previews[0].Height)

	m = press(t, m, "L")
	assert.Equal(t, 31, m.Settings().Height)

	m = press(t, m, "down", "h", "H")
	assert.Equal(t, -11, m.Settings().Offset)
	assert.Len(t, s.previews, 4)
}

func TestAdjustClampsWithoutPreview(t *testing.T) {
	m, s := newTestModel()

	// Blue starts at 1.
	m = press(t, m, "down", "down", "down", "down")
	assert.Equal(t, form.KeyBlue, m.Selected().Key)
	m = press(t, m, "left")
	assert.Equal(t, uint8(0), m.Settings().Color.B)
	previews := len(s.previews)

	m = press(t, m, "left", "H")
	assert.Equal(t, uint8(0), m.Settings().Color.B)
	assert.Len(t, s.previews, previews)
}

func TestTypedValue(t *testing.T) {
	m, s := newTestModel()

	m = press(t, m, "enter")
	assert.Equal(t, ModeEdit, m.mode)
	m = press(t, m, "backspace", "backspace")
	m = typeText(t, m, "64")
	m = press(t, m, "enter")

	assert.Equal(t, ModeForm, m.mode)
	assert.Equal(t, 64, m.Settings().Height)
	require.NotEmpty(t, s.previews)
	assert.Equal(t, 64, s.previews[len(s.previews)-1].Height)
}

func TestTypedValueOutOfRange(t *testing.T) {
	m, s := newTestModel()

	m = press(t, m, "enter", "backspace", "backspace")
	m = typeText(t, m, "99999")
	m = press(t, m, "enter")

	assert.Equal(t, ModeEdit, m.mode)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusMsg, "between")
	assert.Empty(t, s.previews)

	m = press(t, m, "esc")
	assert.Equal(t, ModeForm, m.mode)
	assert.Equal(t, model.DefaultSettings(), m.Settings())
}

func TestTypedColor(t *testing.T) {
	m, s := newTestModel()

	m = press(t, m, "#")
	assert.Equal(t, ModeColor, m.mode)
	m.input.SetValue("")
	m = typeText(t, m, "00ff0080")
	m = press(t, m, "enter")

	assert.Equal(t, model.RGBA(0, 255, 0, 128), m.Settings().Color)
	require.Len(t, s.previews, 1)

	m = press(t, m, "c")
	m.input.SetValue("")
	m = typeText(t, m, "nope")
	m = press(t, m, "enter")
	assert.True(t, m.statusErr)
	assert.Len(t, s.previews, 1)
}

func TestReset(t *testing.T) {
	m, s := newTestModel()

	m = press(t, m, "r")
	assert.Empty(t, s.previews)

	m = press(t, m, "right", "right", "r")
	assert.Equal(t, model.DefaultSettings(), m.Settings())
	assert.Len(t, s.previews, 3)
}

func TestAccept(t *testing.T) {
	m, s := newTestModel()

	m = press(t, m, "right")
	next, cmd := m.Update(keyMsg("a"))
	m = next.(Model)
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, doneMsg{outcome: OutcomeAccepted}, msg)
	assert.Equal(t, 1, s.accepted)

	next, cmd = m.Update(msg)
	m = next.(Model)
	assert.Equal(t, OutcomeAccepted, m.Outcome())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestReject(t *testing.T) {
	m, s := newTestModel()

	m = press(t, m, "q")
	assert.Equal(t, OutcomeRejected, m.Outcome())
	assert.Equal(t, 1, s.rejected)
	assert.Zero(t, s.accepted)
}

func TestPreviewErrorShowsStatus(t *testing.T) {
	m, s := newTestModel()
	s.previewErr = errors.New("linereaderd is not running")

	m = press(t, m, "right")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusMsg, "not running")
}

func TestHelpMode(t *testing.T) {
	m, s := newTestModel()

	m = press(t, m, "?")
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	// esc leaves help without ending the session.
	m = press(t, m, "esc")
	assert.Equal(t, ModeForm, m.mode)
	assert.Zero(t, s.rejected)
}

func TestView(t *testing.T) {
	m, _ := newTestModel()
	view := m.View()
	assert.Contains(t, view, "Line Reader Settings")
	assert.Contains(t, view, "Height")
	assert.Contains(t, view, "ff800120")
	assert.NotContains(t, view, "modified")

	m = press(t, m, "right")
	assert.Contains(t, m.View(), "modified")

	assert.Equal(t, "Initializing...", New(context.Background(), &fakeSession{}, model.DefaultSettings()).View())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "accepted", OutcomeAccepted.String())
	assert.Equal(t, "rejected", OutcomeRejected.String())
	assert.Equal(t, "none", OutcomeNone.String())
}
