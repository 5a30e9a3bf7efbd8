package config

import (
	_ "embed"
	"math"

	"github.com/vovakirdan/tui-dungeon/internal/dungeon"
)

//go:embed defaults/dungeon.yaml
var defaultDungeonYAML []byte

// Default returns the hardcoded crawler configuration with a minimal
// roster. Used when the embedded defaults/dungeon.yaml cannot be parsed.
func Default() Config {
	gen := dungeon.DefaultConfig()

	return Config{
		Clock: ClockConfig{
			TickRate:           60,
			FrameRate:          30,
			MaxStabilizePasses: 32,
			MaxCatchUpMS:       250,
		},
		World: WorldConfig{
			TileSize:     64,
			BandSize:     64,
			RowAllowance: 64,
			CellWidth:    32,
			CellHeight:   64,
		},
		Generator: GeneratorConfig{
			Width:         gen.Width,
			Height:        gen.Height,
			MaxDepth:      gen.MaxDepth,
			Border:        gen.Border,
			WallThickness: gen.WallThickness,
			HallWidth:     gen.HallWidth,
			RoomMinSize:   gen.RoomMinSize,
			WallMinLength: gen.WallMinLength,
			LeafMinArea:   gen.LeafMinArea,
			LeafMinSide:   gen.LeafMinSide,
		},
		Gamemaster: GamemasterConfig{
			KillBase:           40,
			KillPerLevel:       20,
			BaseSpawnInterval:  45,
			ExtraSpawnInterval: 90,
			MaxExtraSpawners:   6,
			SpawnAttempts:      10,
			AnnouncementTicks:  120,
			FreezeTicks:        60,
			DeathFlashTicks:    90,
			DeathFadeTicks:     180,
			CoinChance:         0.25,
			Pacing: PacingConfig{
				Enabled:        true,
				InitialLevel:   0.0,
				MaxAt:          8,
				SpawnReduction: 0.5,
				KillScaling:    0.5,
			},
		},
		Input: InputConfig{
			KeyHoldMS: 200,
		},
		Players: []Character{
			{
				ID:              "knight",
				Name:            "Knight",
				Glyph:           "K",
				Color:           "cyan",
				MaxHP:           16,
				Range:           70,
				AttackDamage:    8,
				Pierce:          3,
				AttackCooldown:  24,
				DamageCooldown:  25,
				AttackSpread:    math.Pi / 4,
				ProjectileSpeed: 16,
				Hitbox:          24,
				Speed:           2.4,
				AttackRadius:    16,
				AttackEndRadius: 24,
			},
		},
		Enemies: []Character{
			{
				ID:             "skeleton",
				Name:           "Skeleton",
				Glyph:          "s",
				Color:          "white",
				MaxHP:          6,
				AttackDamage:   2,
				DamageCooldown: 10,
				Hitbox:         20,
				Speed:          1.8,
			},
			{
				ID:               "ghost",
				Name:             "Ghost",
				Glyph:            "g",
				Color:            "dark_gray",
				Behavior:         "flanker",
				DoesSteps:        boolPtr(false),
				MaxHP:            4,
				AttackDamage:     1,
				DamageCooldown:   6,
				Hitbox:           20,
				Speed:            2.8,
				TargetBiasRange:  1200,
				TargetBiasMin:    0.3,
				TargetBiasSpread: 0.5,
			},
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}
