// Package crawl implements the dungeon crawler's modes on top of the state
// stack: main menu, character select, the gamemaster that runs a sequence
// of levels, the level itself and its overlays.
package crawl

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/tui-dungeon/internal/config"
)

// Result is the outcome of a level or a run.
type Result int

const (
	ResultNone Result = iota
	ResultWin
	ResultDeath
	ResultQuit
)

// String returns a human-readable result name.
func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultDeath:
		return "death"
	case ResultQuit:
		return "quit"
	default:
		return "none"
	}
}

// RunSummary describes a finished run.
type RunSummary struct {
	Character string
	Level     int // Deepest level entered
	Kills     int
	Coins     int
	Result    Result
	Duration  time.Duration // Simulated time spent in levels
	Seed      int64
}

// Session carries what every mode of one player's session needs.
type Session struct {
	Config config.Config
	Rand   *rand.Rand
	Seed   int64
	Logger *log.Logger

	// OnRunEnd is called once per finished run, before the run summary
	// is shown.
	OnRunEnd func(RunSummary)

	pacing *config.Pacing
}

// NewSession creates a session seeded with seed. A nil logger discards.
func NewSession(cfg config.Config, seed int64, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		Config: cfg,
		Rand:   rand.New(rand.NewSource(seed)),
		Seed:   seed,
		Logger: logger,
		pacing: config.NewPacing(cfg.Gamemaster),
	}
}

// Pacing returns the per-level difficulty calculator.
func (s *Session) Pacing() *config.Pacing {
	return s.pacing
}

func (s *Session) reportRun(sum RunSummary) {
	s.Logger.Info("run finished",
		"character", sum.Character,
		"level", sum.Level,
		"kills", sum.Kills,
		"result", sum.Result)
	if s.OnRunEnd != nil {
		s.OnRunEnd(sum)
	}
}
