package crawl

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/engine"
)

// unwind pops every state above the gamemaster. Without a gamemaster
// below, only s is popped.
func unwind(s *engine.State) {
	if gm, _, ok := engine.Find[*Gamemaster](s); ok {
		s.PopUntil(gm)
		return
	}
	s.Pop()
}

// drawPanel paints a boxed block of centered lines in the middle of b.
func drawPanel(scr *core.Screen, b core.Rect, color core.Color, lines ...string) {
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	box := core.NewRect(b.X+(b.W-width-6)/2, b.Y+(b.H-len(lines)-2)/2, width+6, len(lines)+2)
	scr.FillRect(box, core.Blank)
	scr.DrawBox(box, core.ColorGray)
	for i, l := range lines {
		c := core.ColorWhite
		if i == 0 {
			c = color
		}
		scr.DrawTextCentered(box.Y+1+i, l, c)
	}
}

// Banner shows a line of text over the world. The world below gets its
// first tick so the level can settle, then stays frozen until the freeze
// ends; input is swallowed while the banner is up.
type Banner struct {
	engine.Base

	Text     string
	duration int
	freeze   int
	ticks    int
}

// NewBanner creates a banner shown for duration ticks.
func NewBanner(text string, duration, freeze int) *engine.State {
	return engine.NewState("banner", &Banner{
		Text:     text,
		duration: max(1, duration),
		freeze:   freeze,
	})
}

// OnTick counts down and ticks the world when it is not frozen.
func (bn *Banner) OnTick(s *engine.State, tick uint64) {
	bn.ticks++
	if bn.ticks > bn.duration {
		s.Pop()
		return
	}
	if prev := s.Prev(); prev != nil && (bn.ticks == 1 || bn.ticks > bn.freeze) {
		prev.Tick(tick)
	}
}

// OnDraw paints the world dimmed, then the text.
func (bn *Banner) OnDraw(s *engine.State, tick uint64, now time.Duration) {
	if prev := s.Prev(); prev != nil {
		prev.Draw(tick, now)
	}
	scr := s.Surface()
	b := s.Bounds()
	if bn.ticks <= bn.freeze {
		scr.Tint(b, core.ColorDarkGray)
	}
	drawPanel(scr, b, core.ColorBrightYellow, bn.Text)
}

// Summary is the end-of-run screen.
type Summary struct {
	engine.Base

	sess *Session
	Run  RunSummary
}

// NewSummary creates the summary screen for a finished run.
func NewSummary(sess *Session, sum RunSummary) *engine.State {
	return engine.NewState("summary", &Summary{sess: sess, Run: sum})
}

// OnInput dismisses the summary.
func (su *Summary) OnInput(s *engine.State, ev core.Event) {
	if ev.IsKey(core.EventKeyDown, core.KeyEnter, core.KeyEscape, core.KeySpace) || ev.Type == core.EventPointerDown {
		s.Pop()
	}
}

// OnDraw paints the run results.
func (su *Summary) OnDraw(s *engine.State, tick uint64, now time.Duration) {
	scr := s.Surface()
	b := s.Bounds()
	scr.FillRect(b, core.Blank)

	title, color := "Run Over", core.ColorBrightYellow
	if su.Run.Result == ResultDeath {
		title, color = "You Died", core.ColorBrightRed
	}
	drawPanel(scr, b, color,
		title,
		"",
		characterName(su.sess.Config, su.Run.Character),
		fmt.Sprintf("Reached level %d", su.Run.Level),
		fmt.Sprintf("Kills %d  Coins %d", su.Run.Kills, su.Run.Coins),
		fmt.Sprintf("Time %s", su.Run.Duration.Round(time.Second)),
		"",
		"Press Enter",
	)
}

// HUD is a passthrough overlay with the level status line.
type HUD struct {
	engine.Base
	level *Level
}

// NewHUD creates the status overlay for lv.
func NewHUD(lv *Level) *engine.State {
	return engine.NewState("hud", &HUD{level: lv}, engine.WithPassthrough())
}

// OnInput opens the pause overlay when the status line is clicked.
func (h *HUD) OnInput(s *engine.State, ev core.Event) {
	if ev.Type == core.EventPointerDown && ev.Y == s.Bounds().Bottom()-1 && h.level.Result() == ResultNone {
		s.Game().Push(NewPause())
	}
}

// OnDraw paints the status line over the bottom row.
func (h *HUD) OnDraw(s *engine.State, tick uint64, now time.Duration) {
	scr := s.Surface()
	b := s.Bounds()
	lv := h.level
	y := b.Bottom() - 1

	scr.FillRect(core.NewRect(b.X, y, b.W, 1), core.Blank)
	status := fmt.Sprintf(" Level %d   Kills %d/%d   Coins %d", lv.Number(), lv.Kills(), lv.Requirement(), lv.Hero().Coins)
	scr.DrawTextColor(b.X, y, status, core.ColorWhite)
	hint := "[Esc] Pause "
	scr.DrawTextColor(b.Right()-len(hint), y, hint, core.ColorGray)
}

// Pause stops the world and offers to continue or quit the run.
type Pause struct {
	Menu
}

// NewPause creates the pause overlay.
func NewPause() *engine.State {
	p := &Pause{}
	p.Menu = Menu{
		Title:   "Paused",
		Overlay: true,
		Back:    func(s *engine.State) { s.Pop() },
		Items: []MenuItem{
			{Label: "Continue", Action: func(s *engine.State) { s.Pop() }},
			{Label: "Quit Run", Action: quitRun},
		},
	}
	return engine.NewState("pause", p)
}

func quitRun(s *engine.State) {
	if _, lv, ok := engine.Find[*Level](s); ok {
		lv.SetResult(ResultQuit)
	}
	unwind(s)
}

// OnDraw paints the world at a quarter rate under the menu.
func (p *Pause) OnDraw(s *engine.State, tick uint64, now time.Duration) {
	if prev := s.Prev(); prev != nil {
		prev.Draw(tick/4, now/4)
	}
	s.Surface().Tint(s.Bounds(), core.ColorGray)
	p.Menu.OnDraw(s, tick, now)
}

// Death flashes the frozen world, fades it out and ends the level.
type Death struct {
	engine.Base

	flash int
	fade  int
	ticks int
}

// NewDeath creates the death overlay.
func NewDeath(flash, fade int) *engine.State {
	return engine.NewState("death", &Death{flash: flash, fade: max(1, fade)})
}

// OnTick ends the level once the fade is over.
func (d *Death) OnTick(s *engine.State, tick uint64) {
	d.ticks++
	if d.ticks >= d.flash+d.fade {
		unwind(s)
	}
}

// OnInput skips the fade.
func (d *Death) OnInput(s *engine.State, ev core.Event) {
	if d.ticks > d.flash && ev.IsKey(core.EventKeyDown, core.KeyEnter, core.KeyEscape, core.KeySpace) {
		unwind(s)
	}
}

// OnDraw flashes red, then blanks the screen from the top down.
func (d *Death) OnDraw(s *engine.State, tick uint64, now time.Duration) {
	if prev := s.Prev(); prev != nil {
		prev.Draw(tick, now)
	}
	scr := s.Surface()
	b := s.Bounds()

	if d.ticks < d.flash {
		if (d.ticks/8)%2 == 0 {
			scr.Shade(b, core.ColorRed)
		}
	} else {
		rows := (d.ticks - d.flash) * b.H / d.fade
		scr.FillRect(core.NewRect(b.X, b.Y, b.W, rows), core.Blank)
	}
	scr.DrawTextCentered(b.Y+b.H/2, "You Died", core.ColorBrightRed)
}

// Win reports a cleared level and waits for the player to go on.
type Win struct {
	engine.Base
	level *Level
}

// NewWin creates the level-cleared overlay.
func NewWin(lv *Level) *engine.State {
	return engine.NewState("win", &Win{level: lv})
}

// OnInput continues to the next level.
func (w *Win) OnInput(s *engine.State, ev core.Event) {
	if ev.IsKey(core.EventKeyDown, core.KeyEnter, core.KeySpace) || ev.Type == core.EventPointerDown {
		unwind(s)
	}
}

// OnDraw paints the frozen world and the level results.
func (w *Win) OnDraw(s *engine.State, tick uint64, now time.Duration) {
	if prev := s.Prev(); prev != nil {
		prev.Draw(tick, now)
	}
	lv := w.level
	drawPanel(s.Surface(), s.Bounds(), core.ColorBrightGreen,
		fmt.Sprintf("Level %d Cleared", lv.Number()),
		"",
		fmt.Sprintf("Kills %d/%d", lv.Kills(), lv.Requirement()),
		fmt.Sprintf("Coins %d", lv.Hero().Coins),
		"",
		"Press Enter",
	)
}
