package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/crawl"
)

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List configured characters and behavior kinds",
	Long: `Shows the playable characters and enemies of the loaded config,
and the behavior kinds a character entry can name.`,
	Args: cobra.NoArgs,
	Run:  runCharacters,
}

func runCharacters(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	fmt.Println("Players:")
	fmt.Println()
	printCharacters(cfg.Players)

	fmt.Println()
	fmt.Println("Enemies:")
	fmt.Println()
	printCharacters(cfg.Enemies)

	behaviors := crawl.Actors.List()
	maxIDLen := 2 // "ID" header
	for _, b := range behaviors {
		maxIDLen = max(maxIDLen, len(b.ID))
	}

	fmt.Println()
	fmt.Println("Behaviors:")
	fmt.Println()
	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Description")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----------")
	for _, b := range behaviors {
		fmt.Printf("  %-*s  %s\n", maxIDLen, b.ID, b.Title)
	}
}

func printCharacters(chars []config.Character) {
	if len(chars) == 0 {
		fmt.Println("  (none)")
		return
	}

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, ch := range chars {
		maxIDLen = max(maxIDLen, len(ch.ID))
	}

	fmt.Printf("  %-*s  %-5s  %-10s  %-8s  %5s  %5s  %6s\n", maxIDLen, "ID", "Glyph", "Name", "Behavior", "HP", "Speed", "Damage")
	fmt.Printf("  %-*s  %-5s  %-10s  %-8s  %5s  %5s  %6s\n", maxIDLen, "--", "-----", "----", "--------", "--", "-----", "------")
	for _, ch := range chars {
		fmt.Printf("  %-*s  %-5s  %-10s  %-8s  %5.0f  %5.1f  %6.1f\n",
			maxIDLen, ch.ID, ch.Glyph, ch.Name, ch.Behavior, ch.MaxHP, ch.Speed, ch.AttackDamage)
	}
}
