package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/crawl"
	"github.com/vovakirdan/tui-dungeon/internal/storage"
)

func testGameConfig() config.Config {
	cfg := config.Default()
	cfg.Resolve()
	return cfg
}

func newTestModel(t *testing.T, store *storage.Store) Model {
	t.Helper()
	return NewModel(Options{
		Config: testGameConfig(),
		Seed:   1,
		Width:  80,
		Height: 25,
		Store:  store,
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, expected Model", next)
	}
	return nm, cmd
}

// frame delivers a frame message d after the session started.
func frame(t *testing.T, m Model, d time.Duration) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, TickMsg(m.start.Add(d)))
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModelShowsMainMenu(t *testing.T) {
	m := newTestModel(t, nil)
	m, cmd := frame(t, m, 100*time.Millisecond)

	if cmd == nil {
		t.Error("frame returned no command, expected the next frame tick")
	}
	if top := m.Game().Top().Name; top != "main-menu" {
		t.Errorf("Top() = %q, expected main-menu", top)
	}
	if m.Game().Tick() != 7 {
		t.Errorf("Tick() = %d, expected 7 ticks by 100ms", m.Game().Tick())
	}
	if w, h := m.Game().Viewport(); w != 80 || h != 24 {
		t.Errorf("Viewport() = %dx%d, expected 80x24 (one row for help)", w, h)
	}

	view := m.View()
	if !strings.Contains(view, "D U N G E O N") {
		t.Error("View() does not show the title")
	}
	if lines := strings.Count(view, "\n") + 1; lines != 25 {
		t.Errorf("View() has %d lines, expected 25", lines)
	}
}

func TestModelCatchUpIsBounded(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = frame(t, m, time.Hour)

	limit := uint64(m.maxCatchUp/m.Game().TickDuration()) + 1
	if m.maxCatchUp != 250*time.Millisecond {
		t.Errorf("maxCatchUp = %v, expected the 250ms default", m.maxCatchUp)
	}
	if m.Game().Tick() > limit {
		t.Errorf("Tick() = %d after a stall, expected at most %d", m.Game().Tick(), limit)
	}
}

func TestModelCatchUpUnbounded(t *testing.T) {
	cfg := testGameConfig()
	cfg.Clock.MaxCatchUpMS = 0
	m := NewModel(Options{Config: cfg, Seed: 1, Width: 80, Height: 25})
	m, _ = frame(t, m, time.Second)

	// Ticks at 0, 1/60s, ..., 1s.
	if m.Game().Tick() != 61 {
		t.Errorf("Tick() = %d after a 1s stall, expected 61 with no catch-up bound", m.Game().Tick())
	}
}

func TestModelKeysAreHeldUntilTimeout(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = frame(t, m, 20*time.Millisecond)

	m, _ = update(t, m, runeKey("d"))
	if !m.Game().KeyHeld(core.KeyRight) {
		t.Fatal("KeyHeld(right) = false after pressing d")
	}

	m, _ = update(t, m, TickMsg(time.Now().Add(time.Second)))
	if m.Game().KeyHeld(core.KeyRight) {
		t.Error("KeyHeld(right) = true after the hold timeout")
	}
}

func TestModelMenuQuit(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = frame(t, m, 20*time.Millisecond)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !isQuit(cmd) {
		t.Error("choosing Quit did not quit the program")
	}
	if m.View() != "" {
		t.Error("View() is not empty after quitting")
	}
}

func TestModelQuitKey(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := update(t, m, runeKey("q"))
	if !isQuit(cmd) {
		t.Error("q did not quit the program")
	}
}

func TestModelResize(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 41})

	if m.screen.Width() != 120 || m.screen.Height() != 40 {
		t.Errorf("screen = %dx%d, expected 120x40", m.screen.Width(), m.screen.Height())
	}
	if w, h := m.Game().Viewport(); w != 120 || h != 40 {
		t.Errorf("Viewport() = %dx%d, expected 120x40", w, h)
	}
	if b := m.Game().Top().Bounds(); b.W != 120 || b.H != 40 {
		t.Errorf("Bounds() = %+v, expected the resized surface", b)
	}
}

func TestModelMouse(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = frame(t, m, 20*time.Millisecond)

	m, _ = update(t, m, tea.MouseMsg{X: 3, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	p := m.Game().Pointer()
	if !p.Down || p.DownX != 3 || p.DownY != 4 {
		t.Fatalf("Pointer() = %+v, expected down at 3,4", p)
	}

	m, _ = update(t, m, tea.MouseMsg{X: 5, Y: 6, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if p := m.Game().Pointer(); p.X != 5 || p.Y != 6 {
		t.Errorf("Pointer() = %+v, expected moved to 5,6", p)
	}

	m, _ = update(t, m, tea.MouseMsg{X: 5, Y: 6, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.Game().Pointer().Down {
		t.Error("Pointer().Down = true after release")
	}

	m, _ = update(t, m, tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	if m.Game().Pointer().Down {
		t.Error("right button should not press the pointer")
	}
}

func TestModelSavesFinishedRuns(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	m := newTestModel(t, store)
	m.sess.OnRunEnd(crawl.RunSummary{
		Character: "knight",
		Level:     3,
		Kills:     42,
		Result:    crawl.ResultDeath,
		Duration:  2 * time.Minute,
		Seed:      1,
	})

	runs, err := store.TopRuns("knight", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("TopRuns() returned %d runs, expected 1", len(runs))
	}
	r := runs[0]
	if r.Player != "local" || r.Level != 3 || r.Kills != 42 || r.Result != "death" || r.Duration != 2*time.Minute {
		t.Errorf("saved run = %+v, expected local knight death on level 3", r)
	}
}
