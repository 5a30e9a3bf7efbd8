package tui

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// KeyMap defines the terminal bindings of a play session. Game keys are
// translated to the stable key identifiers the simulation understands.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Confirm    key.Binding
	Back       key.Binding
	Pause      key.Binding
	Quit       key.Binding
	Screenshot key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Confirm, k.Pause, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Confirm, k.Back, k.Pause},
		{k.Screenshot, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings. Arrows, WASD and vim keys
// all move.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w", "k"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s", "j"),
			key.WithHelp("↓/s", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a", "h"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d", "l"),
			key.WithHelp("→/d", "right"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
	}
}

// Translate maps a key message to the simulation key identifier.
// Host keys (quit, screenshot) and unbound keys report false.
func (k KeyMap) Translate(msg tea.KeyMsg) (string, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return core.KeyUp, true
	case key.Matches(msg, k.Down):
		return core.KeyDown, true
	case key.Matches(msg, k.Left):
		return core.KeyLeft, true
	case key.Matches(msg, k.Right):
		return core.KeyRight, true
	case msg.String() == " ":
		return core.KeySpace, true
	case key.Matches(msg, k.Confirm):
		return core.KeyEnter, true
	case key.Matches(msg, k.Back):
		return core.KeyEscape, true
	case key.Matches(msg, k.Pause):
		return "p", true
	}
	return "", false
}

// heldKeys emulates key releases. Terminals only report presses and
// auto-repeats, so a key counts as held until hold has passed since its
// last press.
type heldKeys struct {
	hold time.Duration
	last map[string]time.Time
}

func newHeldKeys(hold time.Duration) *heldKeys {
	return &heldKeys{hold: hold, last: make(map[string]time.Time)}
}

// press records a press or repeat of k at t.
func (h *heldKeys) press(k string, t time.Time) {
	h.last[k] = t
}

// expire returns the keys whose hold ran out by t and forgets them.
func (h *heldKeys) expire(t time.Time) []string {
	var released []string
	for k, at := range h.last {
		if t.Sub(at) >= h.hold {
			released = append(released, k)
			delete(h.last, k)
		}
	}
	slices.Sort(released)
	return released
}
