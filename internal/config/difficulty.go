package config

import (
	"fmt"
	"math"
)

// PacingConfig defines how the run gets harder from level to level.
type PacingConfig struct {
	Enabled        bool    `yaml:"enabled"`
	InitialLevel   float64 `yaml:"initial_level"`   // 0.0 = easy, 1.0 = hard
	MaxAt          int     `yaml:"max_at"`          // Dungeon level at which max difficulty is reached
	SpawnReduction float64 `yaml:"spawn_reduction"` // Fraction of the spawn interval removed at max difficulty
	KillScaling    float64 `yaml:"kill_scaling"`    // Multiplier added to the kill requirement at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. An empty name means no preset.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(name); p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", name)
	}
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	if preset == "" {
		return
	}
	cfg.Gamemaster.Preset = string(preset)
	if preset == DifficultyFixed {
		cfg.Gamemaster.Pacing.Enabled = false
		return
	}
	cfg.Gamemaster.Pacing.Enabled = true
	cfg.Gamemaster.Pacing.InitialLevel = InitialLevelForPreset(preset)

	switch preset {
	case DifficultyEasy:
		cfg.Gamemaster.KillBase = max(1, cfg.Gamemaster.KillBase*2/3)
		cfg.Gamemaster.CoinChance = math.Min(1, cfg.Gamemaster.CoinChance*1.5)
	case DifficultyHard:
		cfg.Gamemaster.KillBase += cfg.Gamemaster.KillBase / 2
		cfg.Gamemaster.MaxExtraSpawners++
	}
}

// minSpawnInterval keeps spawners from firing every tick.
const minSpawnInterval = 10

// Pacing calculates per-level gamemaster parameters.
type Pacing struct {
	gm GamemasterConfig
}

// NewPacing creates a pacing calculator for a gamemaster section.
func NewPacing(gm GamemasterConfig) *Pacing {
	return &Pacing{gm: gm}
}

// Level returns the difficulty (0.0 to 1.0) of a dungeon level (1-based).
func (p *Pacing) Level(dungeonLevel int) float64 {
	cfg := p.gm.Pacing
	initial := clampF(cfg.InitialLevel, 0.0, 1.0)
	if !cfg.Enabled {
		return initial
	}

	maxAt := float64(cfg.MaxAt)
	if maxAt <= 0 {
		maxAt = 1
	}
	progress := clampF(float64(dungeonLevel-1)/maxAt, 0.0, 1.0)
	return initial + progress*(1.0-initial)
}

// KillRequirement returns the kills needed to clear a dungeon level.
func (p *Pacing) KillRequirement(dungeonLevel int) int {
	base := p.gm.KillBase + max(0, dungeonLevel-1)*p.gm.KillPerLevel
	scaled := float64(base) * (1.0 + p.Level(dungeonLevel)*p.gm.Pacing.KillScaling)
	return max(1, int(math.Round(scaled)))
}

// SpawnInterval returns the ticks between spawns for a base interval.
func (p *Pacing) SpawnInterval(base int, dungeonLevel int) int {
	reduction := int(p.Level(dungeonLevel) * p.gm.Pacing.SpawnReduction * float64(base))
	return max(minSpawnInterval, base-reduction)
}

// ExtraSpawners returns how many spawners run on top of the base one.
func (p *Pacing) ExtraSpawners(dungeonLevel int) int {
	return clampI(dungeonLevel-1, 0, p.gm.MaxExtraSpawners)
}

// clampF restricts a float64 to [lo, hi].
func clampF(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}

func clampI(val, lo, hi int) int {
	return max(lo, min(hi, val))
}
