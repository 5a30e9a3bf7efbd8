// Package config provides YAML-based configuration loading and difficulty
// pacing for the dungeon crawler.
package config

import (
	"fmt"

	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/dungeon"
)

// Config is the complete crawler configuration.
type Config struct {
	Clock      ClockConfig      `yaml:"clock"`
	World      WorldConfig      `yaml:"world"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Gamemaster GamemasterConfig `yaml:"gamemaster"`
	Input      InputConfig      `yaml:"input"`
	Players    []Character      `yaml:"players"`
	Enemies    []Character      `yaml:"enemies"`
}

// ClockConfig defines the simulation clock.
type ClockConfig struct {
	TickRate           int `yaml:"tick_rate"`            // Fixed simulation ticks per second
	FrameRate          int `yaml:"frame_rate"`           // Presentation frames per second
	MaxStabilizePasses int `yaml:"max_stabilize_passes"` // Re-dispatch limit within one tick
	MaxCatchUpMS       int `yaml:"max_catch_up_ms"`      // Simulated time one frame may run after a stall, 0 = unbounded
}

// WorldConfig defines world units and the entity index.
type WorldConfig struct {
	TileSize     float64 `yaml:"tile_size"`     // World units per tile
	BandSize     float64 `yaml:"band_size"`     // Entity index row band height
	RowAllowance int     `yaml:"row_allowance"` // Bands above y=0 before the index grows
	CellWidth    float64 `yaml:"cell_width"`    // World units per screen column
	CellHeight   float64 `yaml:"cell_height"`   // World units per screen row
}

// GeneratorConfig defines the dungeon generator parameters (in tiles).
type GeneratorConfig struct {
	Width         int `yaml:"width"`
	Height        int `yaml:"height"`
	MaxDepth      int `yaml:"max_depth"`
	Border        int `yaml:"border"`
	WallThickness int `yaml:"wall_thickness"`
	HallWidth     int `yaml:"hall_width"`
	RoomMinSize   int `yaml:"room_min_size"`
	WallMinLength int `yaml:"wall_min_length"`
	LeafMinArea   int `yaml:"leaf_min_area"`
	LeafMinSide   int `yaml:"leaf_min_side"`
}

// Dungeon converts the generator section to dungeon.Config.
func (g GeneratorConfig) Dungeon() dungeon.Config {
	return dungeon.Config{
		Width:         g.Width,
		Height:        g.Height,
		MaxDepth:      g.MaxDepth,
		Border:        g.Border,
		WallThickness: g.WallThickness,
		HallWidth:     g.HallWidth,
		RoomMinSize:   g.RoomMinSize,
		WallMinLength: g.WallMinLength,
		LeafMinArea:   g.LeafMinArea,
		LeafMinSide:   g.LeafMinSide,
	}
}

// GamemasterConfig defines run pacing.
type GamemasterConfig struct {
	KillBase           int          `yaml:"kill_base"`            // Kills needed on level 1
	KillPerLevel       int          `yaml:"kill_per_level"`       // Extra kills per level
	BaseSpawnInterval  int          `yaml:"base_spawn_interval"`  // Ticks between spawns of the base spawner
	ExtraSpawnInterval int          `yaml:"extra_spawn_interval"` // Ticks between spawns of per-level spawners
	MaxExtraSpawners   int          `yaml:"max_extra_spawners"`
	SpawnAttempts      int          `yaml:"spawn_attempts"`     // Placement retries per spawn
	AnnouncementTicks  int          `yaml:"announcement_ticks"` // Level banner duration
	FreezeTicks        int          `yaml:"freeze_ticks"`       // World freeze under the level banner
	DeathFlashTicks    int          `yaml:"death_flash_ticks"`
	DeathFadeTicks     int          `yaml:"death_fade_ticks"`
	CoinChance         float64      `yaml:"coin_chance"` // Chance an enemy drops a coin
	Pacing             PacingConfig `yaml:"pacing"`
	Preset             string       `yaml:"preset"`
}

// InputConfig defines how terminal keys are turned into held keys.
type InputConfig struct {
	// KeyHoldMS is how long a key stays held after its last press or
	// repeat. Terminals report no key releases.
	KeyHoldMS int `yaml:"key_hold_ms"`
}

// Character is a playable class or an enemy type.
type Character struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Glyph    string `yaml:"glyph"`
	Color    string `yaml:"color"`
	Behavior string `yaml:"behavior"` // Registered actor behavior kind

	MaxHP           float64 `yaml:"max_hp"`
	Speed           float64 `yaml:"speed"`  // World units per tick
	Hitbox          float64 `yaml:"hitbox"` // Collision radius
	Range           float64 `yaml:"range"`  // Auto-target distance
	AttackDamage    float64 `yaml:"attack_damage"`
	AttackCooldown  int     `yaml:"attack_cooldown"` // Ticks between attacks
	DamageCooldown  int     `yaml:"damage_cooldown"` // Ticks of invulnerability after a hit
	AttackSpread    float64 `yaml:"attack_spread"`   // Radians of random aim error
	AttackRadius    float64 `yaml:"attack_radius"`   // Projectile start radius
	AttackEndRadius float64 `yaml:"attack_end_radius"`
	Pierce          int     `yaml:"pierce"` // Hits per projectile
	ProjectileSpeed float64 `yaml:"projectile_speed"`

	TargetBiasRange  float64 `yaml:"target_bias_range"` // Flanking distance
	TargetBiasMin    float64 `yaml:"target_bias_min"`
	TargetBiasSpread float64 `yaml:"target_bias_spread"`
	DoesSteps        *bool   `yaml:"does_steps"`
}

// WithDefaults fills unset stats the way the original character sheet did.
func (c Character) WithDefaults() Character {
	setF := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	setI := func(v *int, d int) {
		if *v == 0 {
			*v = d
		}
	}

	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Glyph == "" && c.Name != "" {
		c.Glyph = c.Name[:1]
	}
	setF(&c.MaxHP, 10)
	setF(&c.Speed, 4)
	setF(&c.Hitbox, 24)
	setF(&c.Range, 100)
	setF(&c.AttackDamage, 1)
	setI(&c.AttackCooldown, 20)
	setI(&c.DamageCooldown, 15)
	setF(&c.AttackRadius, 4)
	setF(&c.AttackEndRadius, c.AttackRadius)
	setI(&c.Pierce, 1)
	setF(&c.ProjectileSpeed, 6)
	setF(&c.TargetBiasRange, 450)
	if c.DoesSteps == nil {
		steps := true
		c.DoesSteps = &steps
	}
	return c
}

// Sprite returns the character's screen cell.
func (c Character) Sprite() core.Cell {
	r := '?'
	for _, ch := range c.Glyph {
		r = ch
		break
	}
	color, ok := core.ParseColor(c.Color)
	if !ok {
		color = core.ColorDefault
	}
	return core.Cell{Rune: r, Color: color}
}

// Steps reports whether the character walks. Characters that do not
// step float over walls.
func (c Character) Steps() bool {
	return c.DoesSteps == nil || *c.DoesSteps
}

// Player returns the player character with the given ID.
func (c *Config) Player(id string) (Character, bool) {
	for _, p := range c.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Character{}, false
}

// Validate checks the config for values the crawler cannot run with.
func (c *Config) Validate() error {
	if c.Clock.TickRate <= 0 || c.Clock.FrameRate <= 0 {
		return fmt.Errorf("config: tick rate %d and frame rate %d must be positive",
			c.Clock.TickRate, c.Clock.FrameRate)
	}
	if c.Clock.MaxCatchUpMS < 0 {
		return fmt.Errorf("config: max catch up %dms must not be negative", c.Clock.MaxCatchUpMS)
	}
	if c.World.TileSize <= 0 || c.World.BandSize <= 0 || c.World.CellWidth <= 0 || c.World.CellHeight <= 0 {
		return fmt.Errorf("config: world sizes must be positive")
	}
	if err := c.Generator.Dungeon().Validate(); err != nil {
		return fmt.Errorf("config: generator: %w", err)
	}
	if len(c.Players) == 0 {
		return fmt.Errorf("config: no player characters")
	}
	if len(c.Enemies) == 0 {
		return fmt.Errorf("config: no enemy characters")
	}

	seen := make(map[string]bool)
	for _, ch := range append(append([]Character{}, c.Players...), c.Enemies...) {
		if ch.ID == "" {
			return fmt.Errorf("config: character %q has no id", ch.Name)
		}
		if seen[ch.ID] {
			return fmt.Errorf("config: duplicate character id %q", ch.ID)
		}
		seen[ch.ID] = true
	}
	return nil
}

// Resolve applies character defaults and default behaviors. Load calls it;
// configs built in code call it before use.
func (c *Config) Resolve() {
	for i := range c.Players {
		c.Players[i] = c.Players[i].WithDefaults()
		if c.Players[i].Behavior == "" {
			c.Players[i].Behavior = "player"
		}
	}
	for i := range c.Enemies {
		c.Enemies[i] = c.Enemies[i].WithDefaults()
		if c.Enemies[i].Behavior == "" {
			c.Enemies[i].Behavior = "chaser"
		}
	}
}
