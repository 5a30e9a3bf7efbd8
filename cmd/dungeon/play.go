package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-dungeon/internal/platform/tui"
	"github.com/vovakirdan/tui-dungeon/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a session in this terminal: main menu, character select,
then dungeon after dungeon until you die or quit.

Controls:
  Arrows/WASD/HJKL - Move (menus: navigate)
  Mouse drag       - Move towards the pointer
  Enter/Space      - Select
  Esc/P            - Pause
  Ctrl+S           - Save a screenshot
  Q/Ctrl+C         - Quit

Your hero fires at the nearest enemy on its own.

Difficulty options:
  easy   - Start at lowest difficulty, progresses to max
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, every level has the base pacing

Examples:
  dungeon play
  dungeon play --difficulty easy
  dungeon play --seed 1234 --log-file dungeon.log --log-level debug
  dungeon play --config ./my-dungeon.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	// The TUI owns the terminal: log to a file or nowhere
	logger, closeLog, err := newLogger(nil)
	if err != nil {
		fail("%v", err)
	}
	defer closeLog()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - the game still works
		store = nil
	}

	runErr := tui.Run(tui.Options{
		Config: cfg,
		Seed:   seed(),
		Width:  width,
		Height: height,
		Store:  store,
		Logger: logger,
	})

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		closeLog()
		fail("running game: %v", runErr)
	}
}
