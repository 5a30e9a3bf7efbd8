package crawl

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/engine"
)

const menuBoxWidth = 30

// MenuItem is one selectable line of a Menu.
type MenuItem struct {
	Label  string
	Action func(s *engine.State)
}

// Menu is a vertical list picked with up/down and enter, or by clicking
// a line.
type Menu struct {
	engine.Base

	Title    string
	Subtitle string
	Items    []MenuItem
	Footer   string
	// Back runs on escape. Nil ignores escape.
	Back func(s *engine.State)
	// Detail returns extra lines shown under the item list for the
	// selected item.
	Detail func(i int) []string
	// Overlay draws the menu in a box over whatever is already on the
	// surface instead of clearing it.
	Overlay bool

	cursor int
	top    int // screen row of the first item, from the last draw
}

// Cursor returns the selected item index.
func (m *Menu) Cursor() int {
	return m.cursor
}

// OnInput moves the cursor and runs item actions.
func (m *Menu) OnInput(s *engine.State, ev core.Event) {
	switch {
	case ev.IsKey(core.EventKeyDown, core.KeyUp):
		if m.cursor > 0 {
			m.cursor--
		}
	case ev.IsKey(core.EventKeyDown, core.KeyDown):
		if m.cursor < len(m.Items)-1 {
			m.cursor++
		}
	case ev.IsKey(core.EventKeyDown, core.KeyEnter, core.KeySpace):
		m.activate(s)
	case ev.IsKey(core.EventKeyDown, core.KeyEscape):
		if m.Back != nil {
			m.Back(s)
		}
	case ev.Type == core.EventPointerDown:
		if i := ev.Y - m.top; i >= 0 && i < len(m.Items) {
			m.cursor = i
			m.activate(s)
		}
	}
}

func (m *Menu) activate(s *engine.State) {
	if m.cursor < len(m.Items) && m.Items[m.cursor].Action != nil {
		m.Items[m.cursor].Action(s)
	}
}

// OnDraw paints the menu centered on the state's surface.
func (m *Menu) OnDraw(s *engine.State, tick uint64, now time.Duration) {
	scr := s.Surface()
	b := s.Bounds()
	y := b.Y + max(1, b.H/4)
	if m.Overlay {
		box := core.NewRect(b.X+(b.W-menuBoxWidth)/2, y-1, menuBoxWidth, len(m.Items)+5)
		scr.FillRect(box, core.Blank)
		scr.DrawBox(box, core.ColorGray)
		y++
	} else {
		scr.FillRect(b, core.Blank)
	}

	scr.DrawTextCentered(y, m.Title, core.ColorBrightYellow)
	y += 2
	if m.Subtitle != "" {
		scr.DrawTextCentered(y, m.Subtitle, core.ColorWhite)
		y += 2
	}

	m.top = y
	for i, item := range m.Items {
		line, color := "  "+item.Label+"  ", core.ColorWhite
		if i == m.cursor {
			line, color = "> "+item.Label+"  ", core.ColorBrightCyan
		}
		scr.DrawTextCentered(y, line, color)
		y++
	}

	if m.Detail != nil {
		y++
		for _, line := range m.Detail(m.cursor) {
			scr.DrawTextCentered(y, line, core.ColorGray)
			y++
		}
	}

	if m.Footer != "" {
		scr.DrawTextCentered(b.Bottom()-2, m.Footer, core.ColorGray)
	}
}

// NewMainMenu creates the title screen. It is the root state of a
// session; pass WithSurface to give the session its drawing surface.
func NewMainMenu(sess *Session, opts ...engine.Option) *engine.State {
	m := &Menu{
		Title:    "D U N G E O N",
		Subtitle: "A tiny roguelite crawler",
		Footer:   "Up/Down: Navigate  |  Enter: Select  |  Esc: Quit",
		Back:     func(s *engine.State) { s.Game().RequestQuit() },
	}
	m.Items = []MenuItem{
		{Label: "Start", Action: func(s *engine.State) { s.Game().Push(NewCharacterSelect(sess)) }},
		{Label: "Quit", Action: func(s *engine.State) { s.Game().RequestQuit() }},
	}
	return engine.NewState("main-menu", m, opts...)
}

// NewCharacterSelect lists the configured player characters. Choosing one
// replaces the select screen with a gamemaster running that character.
func NewCharacterSelect(sess *Session) *engine.State {
	players := sess.Config.Players
	m := &Menu{
		Title:  "Choose Your Party Leader",
		Footer: "Up/Down: Navigate  |  Enter: Select  |  Esc: Back",
		Back:   func(s *engine.State) { s.Pop() },
	}
	for _, ch := range players {
		m.Items = append(m.Items, MenuItem{
			Label:  ch.Name,
			Action: func(s *engine.State) { s.Replace(NewGamemaster(sess, ch)) },
		})
	}
	m.Detail = func(i int) []string {
		if i >= len(players) {
			return nil
		}
		ch := players[i]
		return []string{
			fmt.Sprintf("HP %.0f  Speed %.1f  Range %.0f", ch.MaxHP, ch.Speed, ch.Range),
			fmt.Sprintf("Damage %.1f  Pierce %d  Cooldown %d", ch.AttackDamage, ch.Pierce, ch.AttackCooldown),
		}
	}
	return engine.NewState("character-select", m)
}

// characterName is used by overlays that only hold a character id.
func characterName(cfg config.Config, id string) string {
	if ch, ok := cfg.Player(id); ok {
		return ch.Name
	}
	return id
}
