// dungeon is a tiny roguelite dungeon crawler for the terminal.
//
// Usage:
//
//	dungeon play             - Play in this terminal
//	dungeon serve            - Start SSH server for remote play
//	dungeon runs             - Show the leaderboard of finished runs
//	dungeon gen              - Print a generated dungeon
//	dungeon characters       - List configured characters and behaviors
//
// Global flags:
//
//	--fps <rate>          - Set presentation frame rate (simulation ticks stay fixed)
//	--seed <value>        - Set RNG seed for reproducible dungeons
//	--db <path>           - Set database path (default: ~/.dungeon/runs.db)
//	--config <path>       - Use a custom config YAML
//	--difficulty <preset> - easy, normal, hard or fixed
//	--log-level <level>   - debug, info, warn or error
//	--log-file <path>     - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/crawl"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
	flagLogFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dungeon",
	Short: "Dungeon - a tiny roguelite crawler in your terminal",
	Long: `Dungeon drops you into procedurally generated dungeons full of
skeletons and ghosts. Clear each level by reaching the stairs or by
slaying enough enemies, and see how deep you get.

Available commands:
  play        - Play in this terminal
  serve       - Start SSH server for remote play
  runs        - View the leaderboard of finished runs
  gen         - Print a generated dungeon as ASCII
  characters  - List characters and behavior kinds

Examples:
  dungeon play
  dungeon play --difficulty hard --seed 42
  dungeon serve --ssh :2222
  dungeon gen --seed 7
  dungeon runs`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Presentation frame rate (0 = config value)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.dungeon/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(charactersCmd)
}

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (config.Config, error) {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if err := crawl.ValidateBehaviors(cfg); err != nil {
		return cfg, err
	}

	config.ApplyPreset(&cfg, preset)
	if flagFPS > 0 {
		cfg.Clock.FrameRate = flagFPS
	}
	return cfg, nil
}

// seed returns the --seed value, or a time-based seed when unset.
func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// newLogger builds the logger selected by --log-level and --log-file.
// Without a log file, logs go to fallback; a nil fallback discards them.
// The returned function closes the log file.
func newLogger(fallback io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}

	w, closer := fallback, func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w, closer = f, func() { f.Close() }
	}
	if w == nil {
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "dungeon",
		Level:           level,
	})
	return logger, closer, nil
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
