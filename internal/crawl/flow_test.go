package crawl

import (
	"slices"
	"testing"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/engine"
)

func newMenuClock(sess *Session) *clock {
	return newClock(NewMainMenu(sess, engine.WithSurface(core.NewScreen(80, 24))))
}

func stackNames(g *engine.Game) []string {
	var names []string
	for s := g.Top(); s != nil; s = s.Prev() {
		names = append([]string{s.Name}, names...)
	}
	return names
}

func gamemaster(t *testing.T, g *engine.Game) *Gamemaster {
	t.Helper()
	_, gm, ok := engine.Find[*Gamemaster](g.Top())
	if !ok {
		t.Fatalf("no gamemaster in stack %v", stackNames(g))
	}
	return gm
}

func TestMenuQuit(t *testing.T) {
	c := newMenuClock(testSession(t, testConfig()))
	c.run(1)

	c.press(core.KeyDown)
	c.press(core.KeyEnter)
	if !c.g.QuitRequested() {
		t.Error("QuitRequested() = false after choosing Quit")
	}
}

func TestCharacterSelectBack(t *testing.T) {
	c := newMenuClock(testSession(t, testConfig()))
	c.run(1)

	c.press(core.KeyEnter)
	if top := c.g.Top().Name; top != "character-select" {
		t.Fatalf("Top() = %q, expected character-select", top)
	}
	c.press(core.KeyEscape)
	if top := c.g.Top().Name; top != "main-menu" {
		t.Errorf("after escape Top() = %q, expected main-menu", top)
	}
	if c.g.QuitRequested() {
		t.Error("escape on character select should not quit")
	}
}

func TestRunPauseQuit(t *testing.T) {
	sess := testSession(t, testConfig())
	var runs []RunSummary
	sess.OnRunEnd = func(sum RunSummary) { runs = append(runs, sum) }
	c := newMenuClock(sess)
	c.run(1)

	c.press(core.KeyEnter) // Start
	c.press(core.KeyEnter) // Knight
	if top := c.g.Top().Name; top != "gamemaster" {
		t.Fatalf("Top() = %q, expected gamemaster", top)
	}

	c.run(2)
	want := []string{"main-menu", "gamemaster", "level-1", "hud", "banner"}
	if got := stackNames(c.g); !slices.Equal(got, want) {
		t.Fatalf("stack = %v, expected %v", got, want)
	}

	// The banner swallows input while it is up.
	c.press(core.KeyEscape)
	if top := c.g.Top().Name; top != "banner" {
		t.Errorf("Top() = %q, expected banner to swallow escape", top)
	}

	c.run(sess.Config.Gamemaster.AnnouncementTicks + 1)
	if top := c.g.Top().Name; top != "hud" {
		t.Fatalf("Top() = %q, expected hud after the banner", top)
	}

	c.press(core.KeyEscape)
	if top := c.g.Top().Name; top != "pause" {
		t.Fatalf("Top() = %q, expected pause", top)
	}
	c.press(core.KeyEscape)
	if top := c.g.Top().Name; top != "hud" {
		t.Fatalf("Top() = %q, expected escape to close the pause", top)
	}

	c.press(core.KeyEscape)
	c.press(core.KeyDown)
	c.press(core.KeyEnter) // Quit Run
	if got, want := stackNames(c.g), []string{"main-menu", "gamemaster"}; !slices.Equal(got, want) {
		t.Fatalf("stack = %v, expected %v", got, want)
	}

	c.run(1)
	if got, want := stackNames(c.g), []string{"main-menu", "summary"}; !slices.Equal(got, want) {
		t.Fatalf("stack = %v, expected %v", got, want)
	}
	if len(runs) != 1 {
		t.Fatalf("runs reported = %d, expected 1", len(runs))
	}
	sum := runs[0]
	if sum.Result != ResultQuit || sum.Level != 1 || sum.Character != "knight" || sum.Seed != 1 {
		t.Errorf("summary = %+v, expected quit on level 1 as knight with seed 1", sum)
	}
	if sum.Duration <= 0 {
		t.Errorf("Duration = %v, expected time spent in the level", sum.Duration)
	}

	c.press(core.KeyEnter)
	if got, want := stackNames(c.g), []string{"main-menu"}; !slices.Equal(got, want) {
		t.Errorf("stack = %v, expected %v", got, want)
	}
}

func TestWinStartsNextLevel(t *testing.T) {
	sess := testSession(t, testConfig())
	c := newMenuClock(sess)
	c.run(1)
	c.press(core.KeyEnter)
	c.press(core.KeyEnter)
	c.run(sess.Config.Gamemaster.AnnouncementTicks + 3)

	gm := gamemaster(t, c.g)
	first := gm.Level()
	first.SetResult(ResultWin)
	c.run(1)
	if top := c.g.Top().Name; top != "win" {
		t.Fatalf("Top() = %q, expected win", top)
	}

	c.press(core.KeyEnter)
	c.run(1)
	if gm.Number() != 2 {
		t.Fatalf("Number() = %d, expected 2", gm.Number())
	}
	lv := gm.Level()
	if lv == nil || lv == first || lv.Number() != 2 {
		t.Fatalf("Level() = %v, expected a fresh level 2", lv)
	}
	if lv.Requirement() != sess.Pacing().KillRequirement(2) {
		t.Errorf("Requirement() = %d, expected %d", lv.Requirement(), sess.Pacing().KillRequirement(2))
	}

	ls, _, ok := engine.Find[*Level](c.g.Top())
	if !ok {
		t.Fatalf("no level in stack %v", stackNames(c.g))
	}
	spawners := 0
	for sub := ls.Substate(); sub != nil; sub = sub.Prev() {
		spawners++
	}
	if want := 1 + sess.Pacing().ExtraSpawners(2); spawners != want {
		t.Errorf("spawners = %d, expected %d", spawners, want)
	}

	c.run(1)
	if top := c.g.Top().Name; top != "banner" {
		t.Errorf("Top() = %q, expected the level 2 banner", top)
	}
}

func TestDeathEndsRun(t *testing.T) {
	cfg := testConfig()
	cfg.Gamemaster.AnnouncementTicks = 2
	cfg.Gamemaster.FreezeTicks = 1
	cfg.Gamemaster.DeathFlashTicks = 1
	cfg.Gamemaster.DeathFadeTicks = 1
	sess := testSession(t, cfg)
	var runs []RunSummary
	sess.OnRunEnd = func(sum RunSummary) { runs = append(runs, sum) }

	ch, _ := cfg.Player("knight")
	c := newMenuClock(sess)
	c.g.Push(NewGamemaster(sess, ch))
	c.run(6)

	gamemaster(t, c.g).Level().Hero().HP = 0
	c.run(4)

	if got, want := stackNames(c.g), []string{"main-menu", "summary"}; !slices.Equal(got, want) {
		t.Fatalf("stack = %v, expected %v", got, want)
	}
	if len(runs) != 1 || runs[0].Result != ResultDeath {
		t.Errorf("runs = %+v, expected one death", runs)
	}
}

func TestPacingPresetChangesRequirement(t *testing.T) {
	cfg := testConfig()
	config.ApplyPreset(&cfg, config.DifficultyHard)
	sess := testSession(t, cfg)
	ch, _ := cfg.Player("knight")

	lv, err := NewLevel(sess, 1, ch)
	if err != nil {
		t.Fatalf("NewLevel() failed: %v", err)
	}
	if want := sess.Pacing().KillRequirement(1); lv.Requirement() != want || want <= 40 {
		t.Errorf("Requirement() = %d, expected %d above the normal 40", lv.Requirement(), want)
	}
}
