package crawl

import (
	"math"
	"testing"
	"time"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/engine"
	"github.com/vovakirdan/tui-dungeon/internal/world"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Resolve()
	return cfg
}

func testSession(t *testing.T, cfg config.Config) *Session {
	t.Helper()
	if err := ValidateBehaviors(cfg); err != nil {
		t.Fatalf("ValidateBehaviors() failed: %v", err)
	}
	return NewSession(cfg, 1, nil)
}

// clock drives a game one tick per frame.
type clock struct {
	g   *engine.Game
	now time.Duration
}

func newClock(root *engine.State) *clock {
	g := engine.NewGame(engine.Options{})
	g.SetViewport(80, 24)
	g.Push(root)
	return &clock{g: g}
}

func (c *clock) run(ticks int) {
	for range ticks {
		c.g.Frame(c.now)
		c.now += c.g.TickDuration()
	}
}

func (c *clock) press(key string) {
	c.g.Input(core.PressKey(key))
	c.g.Input(core.ReleaseKey(key))
}

// startLevel pushes a fresh level with its own surface.
func startLevel(t *testing.T, sess *Session) (*Level, *clock) {
	t.Helper()
	ch, ok := sess.Config.Player("knight")
	if !ok {
		t.Fatal("knight not configured")
	}
	lv, err := NewLevel(sess, 1, ch)
	if err != nil {
		t.Fatalf("NewLevel() failed: %v", err)
	}
	c := newClock(engine.NewState("level", lv, engine.WithSurface(core.NewScreen(80, 24))))
	return lv, c
}

func enemyConfig(t *testing.T, sess *Session, id string) config.Character {
	t.Helper()
	for _, ch := range sess.Config.Enemies {
		if ch.ID == id {
			return ch
		}
	}
	t.Fatalf("enemy %q not configured", id)
	return config.Character{}
}

func TestActorsRegistered(t *testing.T) {
	for _, id := range []string{"player", "chaser", "flanker"} {
		if !Actors.Exists(id) {
			t.Errorf("Actors.Exists(%q) = false, expected true", id)
		}
	}
	if got := len(Actors.List()); got != 3 {
		t.Errorf("len(Actors.List()) = %d, expected 3", got)
	}
}

func TestValidateBehaviors(t *testing.T) {
	if err := ValidateBehaviors(testConfig()); err != nil {
		t.Errorf("ValidateBehaviors(default) = %v, expected nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown enemy behavior", func(c *config.Config) { c.Enemies[0].Behavior = "teleporter" }},
		{"enemy as player", func(c *config.Config) { c.Enemies[0].Behavior = "player" }},
		{"player as chaser", func(c *config.Config) { c.Players[0].Behavior = "chaser" }},
	}
	for _, tt := range tests {
		cfg := testConfig()
		tt.mutate(&cfg)
		if err := ValidateBehaviors(cfg); err == nil {
			t.Errorf("ValidateBehaviors(%s) = nil, expected error", tt.name)
		}
	}
}

func TestLevelSpawnsPlayerAtEntrance(t *testing.T) {
	sess := testSession(t, testConfig())
	lv, c := startLevel(t, sess)

	ex, ey := lv.Dungeon().Tiles.TileCenter(lv.Dungeon().Entrance.X, lv.Dungeon().Entrance.Y)
	if x, y := lv.Player().Pos(); x != ex || y != ey {
		t.Errorf("player at (%v, %v), expected entrance (%v, %v)", x, y, ex, ey)
	}
	if lv.Index().Len() != 1 {
		t.Errorf("Len() = %d, expected 1", lv.Index().Len())
	}
	if lv.Requirement() != sess.Pacing().KillRequirement(1) {
		t.Errorf("Requirement() = %d, expected %d", lv.Requirement(), sess.Pacing().KillRequirement(1))
	}

	c.run(3)
	if x, y := lv.Player().Pos(); x != ex || y != ey {
		t.Errorf("idle player moved to (%v, %v)", x, y)
	}
	if lv.Result() != ResultNone {
		t.Errorf("Result() = %v, expected none", lv.Result())
	}
}

func TestHeroMovesWithKeys(t *testing.T) {
	sess := testSession(t, testConfig())
	lv, c := startLevel(t, sess)
	lv.Player().NoClip = true
	x0, y0 := lv.Player().Pos()

	c.g.Input(core.PressKey(core.KeyRight))
	c.run(1)
	x1, y1 := lv.Player().Pos()
	if math.Abs(x1-x0-lv.Hero().Char.Speed) > 1e-9 || y1 != y0 {
		t.Errorf("after one tick right: (%v, %v), expected (%v, %v)", x1, y1, x0+lv.Hero().Char.Speed, y0)
	}
	if !lv.Hero().Moved() {
		t.Error("Moved() = false, expected true")
	}

	c.g.Input(core.ReleaseKey(core.KeyRight))
	c.run(1)
	if x2, _ := lv.Player().Pos(); x2 != x1 {
		t.Errorf("released key: x = %v, expected %v", x2, x1)
	}
}

func TestLevelWinOnExit(t *testing.T) {
	sess := testSession(t, testConfig())
	lv, c := startLevel(t, sess)
	c.run(1)

	exit := lv.Dungeon().Exit
	lv.Player().SetPos(lv.Dungeon().Tiles.TileCenter(exit.X, exit.Y))
	c.run(1)

	if lv.Result() != ResultWin {
		t.Fatalf("Result() = %v, expected win", lv.Result())
	}
	if top := c.g.Top().Name; top != "win" {
		t.Errorf("Top() = %q, expected win", top)
	}

	c.press(core.KeyEnter)
	if top := c.g.Top().Name; top != "level" {
		t.Errorf("after enter Top() = %q, expected level", top)
	}
	c.run(2)
	if c.g.Depth() != 1 {
		t.Errorf("Depth() = %d, expected the win overlay to stay gone", c.g.Depth())
	}
}

func TestLevelDeath(t *testing.T) {
	cfg := testConfig()
	cfg.Gamemaster.DeathFlashTicks = 2
	cfg.Gamemaster.DeathFadeTicks = 3
	sess := testSession(t, cfg)
	lv, c := startLevel(t, sess)
	c.run(1)

	lv.Hero().HP = 0
	c.run(1)
	if lv.Result() != ResultDeath {
		t.Fatalf("Result() = %v, expected death", lv.Result())
	}
	if top := c.g.Top().Name; top != "death" {
		t.Errorf("Top() = %q, expected death", top)
	}

	c.run(5)
	if top := c.g.Top().Name; top != "level" {
		t.Errorf("after fade Top() = %q, expected level", top)
	}
}

func TestKillCreditsShooterAndDropsCoin(t *testing.T) {
	cfg := testConfig()
	cfg.Gamemaster.CoinChance = 1
	sess := testSession(t, cfg)
	lv, c := startLevel(t, sess)
	c.run(1)

	px, py := lv.Player().Pos()
	enemy, err := lv.spawnEnemy(enemyConfig(t, sess, "skeleton"), px+2000, py)
	if err != nil {
		t.Fatalf("spawnEnemy() failed: %v", err)
	}
	lv.Index().Update()

	shot := world.NewEntity(KindProjectile, 4, core.Cell{Rune: '*'}, &Projectile{level: lv, source: lv.Player()})
	if !enemy.Behavior.Hit(enemy, shot, 100) {
		t.Fatal("Hit() = false, expected true")
	}
	if enemy.Alive() {
		t.Error("killed enemy is still alive")
	}
	if lv.Kills() != 1 {
		t.Errorf("Kills() = %d, expected 1", lv.Kills())
	}

	lv.Index().Update()
	var coins int
	for e := range lv.Index().All() {
		if e.Kind == KindCoin {
			coins++
			if e.X() != px+2000 || e.Y() != py {
				t.Errorf("coin at (%v, %v), expected the enemy's position", e.X(), e.Y())
			}
		}
	}
	if coins != 1 {
		t.Errorf("coins dropped = %d, expected 1", coins)
	}
}

func TestKillByOtherSourceNotCredited(t *testing.T) {
	sess := testSession(t, testConfig())
	lv, c := startLevel(t, sess)
	c.run(1)

	px, py := lv.Player().Pos()
	enemy, err := lv.spawnEnemy(enemyConfig(t, sess, "skeleton"), px+2000, py)
	if err != nil {
		t.Fatalf("spawnEnemy() failed: %v", err)
	}
	lv.Index().Update()

	enemy.Behavior.Hit(enemy, nil, 100)
	if lv.Kills() != 0 {
		t.Errorf("Kills() = %d, expected 0 for environmental damage", lv.Kills())
	}
}

func TestCoinPickup(t *testing.T) {
	sess := testSession(t, testConfig())
	lv, c := startLevel(t, sess)
	c.run(1)

	px, py := lv.Player().Pos()
	lv.Index().Spawn(newCoin(2), px+10, py)
	lv.Index().Update()

	c.run(1)
	if lv.Hero().Coins != 2 {
		t.Errorf("Coins = %d, expected 2", lv.Hero().Coins)
	}
	if lv.Index().Len() != 1 {
		t.Errorf("Len() = %d, expected only the player", lv.Index().Len())
	}
}

func TestEnemyContactDamagesHero(t *testing.T) {
	sess := testSession(t, testConfig())
	lv, c := startLevel(t, sess)
	c.run(1)

	skeleton := enemyConfig(t, sess, "skeleton")
	px, py := lv.Player().Pos()
	if _, err := lv.spawnEnemy(skeleton, px+10, py); err != nil {
		t.Fatalf("spawnEnemy() failed: %v", err)
	}
	lv.Index().Update()
	maxHP := lv.Hero().Char.MaxHP

	c.run(1)
	if want := maxHP - skeleton.AttackDamage; lv.Hero().HP != want {
		t.Errorf("HP = %v, expected %v", lv.Hero().HP, want)
	}
	if !lv.Hero().Invulnerable(lv.tick) {
		t.Error("hero should be invulnerable right after a hit")
	}

	c.run(1)
	if want := maxHP - skeleton.AttackDamage; lv.Hero().HP != want {
		t.Errorf("HP during cooldown = %v, expected %v", lv.Hero().HP, want)
	}
}

func TestEnemyChasesPlayer(t *testing.T) {
	sess := testSession(t, testConfig())
	lv, c := startLevel(t, sess)
	c.run(1)

	px, py := lv.Player().Pos()
	enemy, err := lv.spawnEnemy(enemyConfig(t, sess, "skeleton"), px+300, py)
	if err != nil {
		t.Fatalf("spawnEnemy() failed: %v", err)
	}
	enemy.NoClip = true
	lv.Index().Update()

	c.run(1)
	if want := px + 300 - enemy.Behavior.(*Enemy).Char.Speed; math.Abs(enemy.X()-want) > 1e-9 {
		t.Errorf("enemy x = %v, expected %v", enemy.X(), want)
	}
	if enemy.Y() != py {
		t.Errorf("enemy y = %v, expected %v", enemy.Y(), py)
	}
}

func TestSpawnerSpawnsOutsideView(t *testing.T) {
	sess := testSession(t, testConfig())
	ch, _ := sess.Config.Player("knight")
	lv, err := NewLevel(sess, 1, ch)
	if err != nil {
		t.Fatalf("NewLevel() failed: %v", err)
	}
	ls := engine.NewState("level", lv, engine.WithSurface(core.NewScreen(80, 24)))
	ls.PushSubstate(NewSpawner(lv, 1))
	c := newClock(ls)
	c.run(60)

	px, py := lv.Player().Pos()
	enemies := 0
	for e := range lv.Index().All() {
		if e.Kind != KindEnemy {
			continue
		}
		enemies++
		if d := math.Hypot(e.X()-px, e.Y()-py); d < 1000 {
			t.Errorf("enemy %d at distance %v, expected it to spawn off screen", e.ID(), d)
		}
	}
	if enemies == 0 {
		t.Error("spawner placed no enemies in 60 ticks")
	}
}

func TestProjectileFliesAndExpires(t *testing.T) {
	sess := testSession(t, testConfig())
	lv, c := startLevel(t, sess)
	c.run(1)

	px, py := lv.Player().Pos()
	p := &Projectile{level: lv, source: lv.Player(), vx: 1, maxTicks: 3, startR: 4, endR: 8}
	shot := lv.Index().Spawn(world.NewEntity(KindProjectile, 4, core.Cell{Rune: '*'}, p), px, py)
	lv.Index().Update()

	c.run(1)
	if shot.X() != px+1 {
		t.Errorf("x = %v, expected %v", shot.X(), px+1)
	}
	if want := 4 + 4.0/3; math.Abs(shot.Radius-want) > 1e-9 {
		t.Errorf("Radius = %v, expected %v", shot.Radius, want)
	}

	c.run(3)
	if shot.Live() {
		t.Error("projectile outlived its lifetime")
	}
}
