package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-dungeon/internal/platform/tui"
	"github.com/vovakirdan/tui-dungeon/internal/storage"
)

var flagPlain bool

var runsCmd = &cobra.Command{
	Use:   "runs [character]",
	Short: "Show the leaderboard of finished runs",
	Long: `Display finished runs, deepest level first.

In a terminal this opens an interactive table with one tab per
character. With --plain, or when output is not a terminal, the top 10
runs are printed as text.

Examples:
  dungeon runs
  dungeon runs --plain
  dungeon runs knight --plain`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a text table instead of the interactive view")
}

func runRuns(_ *cobra.Command, args []string) {
	character := ""
	if len(args) == 1 {
		character = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening runs database: %v", err)
	}
	defer store.Close()

	width, height, termErr := term.GetSize(int(os.Stdout.Fd()))
	if !flagPlain && termErr == nil {
		if err := tui.RunRuns(store, cfg.Players, width, height); err != nil {
			store.Close()
			fail("%v", err)
		}
		return
	}

	runs, err := store.TopRuns(character, 10)
	if err != nil {
		store.Close()
		fail("retrieving runs: %v", err)
	}

	title := "all characters"
	if character != "" {
		title = character
		if ch, ok := cfg.Player(character); ok {
			title = ch.Name
		}
	}
	fmt.Printf("Deepest Runs - %s\n", title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'dungeon play' to record the first run!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %-6s  %-8s  %s\n", "Rank", "Hero", "Level", "Kills", "Result", "Time", "Date")
	fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %-6s  %-8s  %s\n", "----", "----", "-----", "-----", "------", "----", "----")

	for i, r := range runs {
		fmt.Printf("  %-4d  %-10s  %-5d  %-5d  %-6s  %-8s  %s\n",
			i+1, r.Character, r.Level, r.Kills, r.Result,
			r.Duration.Round(time.Second), r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if character != "" {
		fmt.Println()
		if best, err := store.BestLevel(character); err == nil {
			fmt.Printf("Deepest: level %d\n", best)
		}
	}
}
