package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/crawl"
	"github.com/vovakirdan/tui-dungeon/internal/engine"
	"github.com/vovakirdan/tui-dungeon/internal/storage"
)

// Options configures a play session.
type Options struct {
	Config config.Config
	Seed   int64  // 0 picks a time-based seed
	Player string // Recorded with finished runs
	Width  int
	Height int
	Store  *storage.Store // Optional leaderboard
	Logger *log.Logger    // Nil discards
}

// Model is the Bubble Tea model hosting one simulation. The bottom
// terminal row shows the key help; the rest is the game surface.
type Model struct {
	game       *engine.Game
	sess       *crawl.Session
	screen     *core.Screen
	keys       KeyMap
	help       help.Model
	held       *heldKeys
	start      time.Time
	frameRate  int
	maxCatchUp time.Duration // Simulated time one frame may run after a stall, 0 = unbounded
	logger     *log.Logger
	quitting   bool
}

// NewModel creates a session showing the main menu.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Player == "" {
		opts.Player = "local"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	w, h := max(1, opts.Width), max(1, opts.Height-1)
	screen := core.NewScreen(w, h)

	sess := crawl.NewSession(cfg, opts.Seed, logger)
	if store := opts.Store; store != nil {
		player := opts.Player
		sess.OnRunEnd = func(sum crawl.RunSummary) {
			if _, err := store.SaveRun(runRecord(player, sum)); err != nil {
				logger.Warn("could not save run", "error", err)
			}
		}
	}

	game := engine.NewGame(engine.Options{
		TickRate:           cfg.Clock.TickRate,
		MaxStabilizePasses: cfg.Clock.MaxStabilizePasses,
		Logger:             logger,
	})
	game.SetViewport(w, h)
	game.Push(crawl.NewMainMenu(sess, engine.WithSurface(screen)))

	hm := help.New()
	hm.Width = w

	return Model{
		game:       game,
		sess:       sess,
		screen:     screen,
		keys:       DefaultKeyMap(),
		help:       hm,
		held:       newHeldKeys(time.Duration(cfg.Input.KeyHoldMS) * time.Millisecond),
		start:      time.Now(),
		frameRate:  max(1, cfg.Clock.FrameRate),
		maxCatchUp: time.Duration(cfg.Clock.MaxCatchUpMS) * time.Millisecond,
		logger:     logger,
	}
}

// runRecord converts a finished run to its leaderboard row.
func runRecord(player string, sum crawl.RunSummary) storage.Run {
	return storage.Run{
		Player:    player,
		Character: sum.Character,
		Level:     sum.Level,
		Kills:     sum.Kills,
		Coins:     sum.Coins,
		Result:    sum.Result.String(),
		Duration:  sum.Duration,
		Seed:      sum.Seed,
	}
}

// Game returns the hosted simulation.
func (m Model) Game() *engine.Game {
	return m.game
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.frameRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleFrame(time.Time(msg))
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	}

	k, ok := m.keys.Translate(msg)
	if !ok {
		return m, nil
	}
	m.held.press(k, time.Now())
	m.game.Input(core.PressKey(k))
	cmd := m.quitIfRequested()
	return m, cmd
}

// handleMouse turns left-button mouse messages into pointer events. A
// release on the cell that was pressed is also a click.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.game.Input(core.Pointer(core.EventPointerDown, msg.X, msg.Y))
	case tea.MouseActionMotion:
		if !m.game.Pointer().Down {
			return m, nil
		}
		m.game.Input(core.Pointer(core.EventPointerMove, msg.X, msg.Y))
	case tea.MouseActionRelease:
		p := m.game.Pointer()
		if !p.Down {
			return m, nil
		}
		m.game.Input(core.Pointer(core.EventPointerUp, msg.X, msg.Y))
		if p.DownX == msg.X && p.DownY == msg.Y {
			m.game.Input(core.Pointer(core.EventClick, msg.X, msg.Y))
		}
	}
	cmd := m.quitIfRequested()
	return m, cmd
}

// handleResize processes window resize events. States draw to the shared
// surface, so resizing it is enough; the running level keeps going.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	w, h := max(1, msg.Width), max(1, msg.Height-1)
	m.screen.Resize(w, h)
	m.game.SetViewport(w, h)
	m.help.Width = w
	return m, nil
}

// handleFrame releases expired keys, then advances the clock to t.
func (m Model) handleFrame(t time.Time) (tea.Model, tea.Cmd) {
	for _, k := range m.held.expire(t) {
		m.game.Input(core.ReleaseKey(k))
	}

	now := t.Sub(m.start)
	if lag := now - m.game.TickTime(); m.maxCatchUp > 0 && lag > m.maxCatchUp {
		m.start = m.start.Add(lag - m.maxCatchUp)
		now = t.Sub(m.start)
	}
	m.game.Frame(now)

	if cmd := m.quitIfRequested(); cmd != nil {
		return m, cmd
	}
	return m, tickCmd(m.frameRate)
}

func (m *Model) quitIfRequested() tea.Cmd {
	if !m.game.QuitRequested() {
		return nil
	}
	m.quitting = true
	return tea.Quit
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	home, err := os.UserHomeDir()
	if err != nil {
		m.logger.Warn("could not save screenshot", "error", err)
		return
	}
	dir := filepath.Join(home, ".dungeon", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	name := fmt.Sprintf("dungeon_%s.txt", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("could not save screenshot", "error", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

// View renders the last drawn frame and the key help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return RenderScreen(m.screen) + "\n" + m.help.View(m.keys)
}

// Run starts the Bubble Tea program with a new session.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Pointer drag and clicks
	)

	_, err := p.Run()
	return err
}
