package tui

import (
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTranslate(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want string
		ok   bool
	}{
		{"arrow up", tea.KeyMsg{Type: tea.KeyUp}, core.KeyUp, true},
		{"w", runeKey("w"), core.KeyUp, true},
		{"k", runeKey("k"), core.KeyUp, true},
		{"arrow down", tea.KeyMsg{Type: tea.KeyDown}, core.KeyDown, true},
		{"s", runeKey("s"), core.KeyDown, true},
		{"a", runeKey("a"), core.KeyLeft, true},
		{"h", runeKey("h"), core.KeyLeft, true},
		{"d", runeKey("d"), core.KeyRight, true},
		{"arrow right", tea.KeyMsg{Type: tea.KeyRight}, core.KeyRight, true},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, core.KeyEnter, true},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, core.KeySpace, true},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, core.KeyEscape, true},
		{"b", runeKey("b"), core.KeyEscape, true},
		{"p", runeKey("p"), "p", true},
		{"quit is host only", runeKey("q"), "", false},
		{"screenshot is host only", tea.KeyMsg{Type: tea.KeyCtrlS}, "", false},
		{"unbound", runeKey("z"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := km.Translate(tt.msg)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Translate(%q) = %q, %v, expected %q, %v", tt.msg.String(), got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHeldKeysExpire(t *testing.T) {
	h := newHeldKeys(200 * time.Millisecond)
	t0 := time.Unix(100, 0)

	h.press("up", t0)
	h.press("left", t0.Add(50*time.Millisecond))

	if got := h.expire(t0.Add(100 * time.Millisecond)); len(got) != 0 {
		t.Errorf("expire() = %v, expected nothing before the hold ends", got)
	}

	// A repeat extends the hold
	h.press("left", t0.Add(150*time.Millisecond))

	if got := h.expire(t0.Add(200 * time.Millisecond)); !slices.Equal(got, []string{"up"}) {
		t.Errorf("expire() = %v, expected [up]", got)
	}
	if got := h.expire(t0.Add(400 * time.Millisecond)); !slices.Equal(got, []string{"left"}) {
		t.Errorf("expire() = %v, expected [left]", got)
	}
	if got := h.expire(t0.Add(time.Second)); len(got) != 0 {
		t.Errorf("expire() = %v, expected released keys to be forgotten", got)
	}
}

func TestHelpListsBindings(t *testing.T) {
	km := DefaultKeyMap()
	if n := len(km.ShortHelp()); n == 0 {
		t.Error("ShortHelp() is empty")
	}
	total := 0
	for _, col := range km.FullHelp() {
		total += len(col)
	}
	if total != 9 {
		t.Errorf("FullHelp() has %d bindings, expected 9", total)
	}
}
