package crawl

import (
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/dungeon"
	"github.com/vovakirdan/tui-dungeon/internal/engine"
	"github.com/vovakirdan/tui-dungeon/internal/world"
)

// cameraSlack is the part of the half-view the player can move in before
// the camera follows.
const cameraSlack = 0.25

// Level is one generated dungeon floor: tiles, entities and the camera
// that follows the player.
type Level struct {
	engine.Base

	sess   *Session
	game   *engine.Game
	number int

	dungeon *dungeon.Dungeon
	tiles   *dungeon.TileMap
	index   *world.Index
	player  *world.Entity
	hero    *Hero
	cam     world.Camera

	kills       int
	requirement int
	result      Result
	shown       bool
	tick        uint64
	ticks       int
}

// NewLevel generates dungeon level number for the given player character.
func NewLevel(sess *Session, number int, ch config.Character) (*Level, error) {
	cfg := sess.Config
	d, err := dungeon.Generate(cfg.Generator.Dungeon(), sess.Rand, cfg.World.TileSize)
	if err != nil {
		return nil, fmt.Errorf("crawl: level %d: %w", number, err)
	}

	lv := &Level{
		sess:        sess,
		number:      number,
		dungeon:     d,
		tiles:       d.Tiles,
		requirement: sess.Pacing().KillRequirement(number),
		cam: world.Camera{
			CellW: cfg.World.CellWidth,
			CellH: cfg.World.CellHeight,
		},
	}
	lv.index = world.NewIndex(world.Options{
		BandSize:     cfg.World.BandSize,
		RowAllowance: cfg.World.RowAllowance,
		Collider:     d.Tiles,
	})
	lv.hero = newHero(ch, lv)
	lv.player = world.NewEntity(KindPlayer, ch.Hitbox, ch.Sprite(), lv.hero)
	lv.player.NoClip = !ch.Steps()
	return lv, nil
}

// Number returns the level number, starting at 1.
func (lv *Level) Number() int { return lv.number }

// Kills returns the enemies killed by the player on this level.
func (lv *Level) Kills() int { return lv.kills }

// Requirement returns the kills needed to clear the level.
func (lv *Level) Requirement() int { return lv.requirement }

// Result returns the level outcome so far.
func (lv *Level) Result() Result { return lv.result }

// Hero returns the player behavior.
func (lv *Level) Hero() *Hero { return lv.hero }

// Player returns the player entity.
func (lv *Level) Player() *world.Entity { return lv.player }

// Index returns the level's entity index.
func (lv *Level) Index() *world.Index { return lv.index }

// Dungeon returns the generated map.
func (lv *Level) Dungeon() *dungeon.Dungeon { return lv.dungeon }

// Elapsed returns the simulated time played on the level.
func (lv *Level) Elapsed(tickDuration time.Duration) time.Duration {
	return time.Duration(lv.ticks) * tickDuration
}

// SetResult records the outcome. The first result sticks.
func (lv *Level) SetResult(r Result) {
	if lv.result == ResultNone {
		lv.result = r
	}
}

// OnPush spawns the player on the entrance tile.
func (lv *Level) OnPush(s *engine.State) {
	lv.game = s.Game()
	if s.Surface() == nil {
		w, h := lv.game.Viewport()
		s.SetSurface(core.NewScreen(max(w, 1), max(h, 1)))
	}
	lv.cam.Screen = s.Surface()

	x, y := lv.tiles.TileCenter(lv.dungeon.Entrance.X, lv.dungeon.Entrance.Y)
	lv.index.Spawn(lv.player, x, y)
	lv.index.Update()
	lv.cam.X, lv.cam.Y = x, y
}

// OnTick advances every entity and checks for the end of the level.
func (lv *Level) OnTick(s *engine.State, tick uint64) {
	lv.tick = tick
	if lv.result != ResultNone {
		lv.showResult(s)
		return
	}

	lv.ticks++
	lv.index.Update()
	lv.index.Tick(tick)
	lv.index.Update()
	lv.follow()

	switch {
	case lv.hero.HP <= 0:
		lv.SetResult(ResultDeath)
	case lv.requirement > 0 && lv.kills >= lv.requirement:
		lv.SetResult(ResultWin)
	case lv.onExit():
		lv.SetResult(ResultWin)
	}
	if lv.result != ResultNone {
		lv.showResult(s)
	}
}

// OnInput opens the pause overlay.
func (lv *Level) OnInput(s *engine.State, ev core.Event) {
	if ev.IsKey(core.EventKeyDown, core.KeyEscape, "p") && lv.result == ResultNone {
		s.Game().Push(NewPause())
	}
}

// OnDraw paints tiles and entities row by row so lower rows overlap the
// rows above them.
func (lv *Level) OnDraw(s *engine.State, tick uint64, now time.Duration) {
	scr := s.Surface()
	b := s.Bounds()
	lv.cam.Screen = scr
	lv.cam.Tick = tick

	scr.FillRect(b, core.Blank)
	for sy := b.Y; sy < b.Bottom(); sy++ {
		for sx := b.X; sx < b.Right(); sx++ {
			tx, ty := lv.tiles.TileAt(lv.cam.ToWorld(sx, sy))
			if lv.tiles.InBounds(tx, ty) {
				scr.SetCell(sx, sy, tileCell(lv.tiles.At(tx, ty)))
			}
		}

		_, mid := lv.cam.ToWorld(b.X, sy)
		top := lv.index.Band(mid - lv.cam.CellH/2)
		bottom := lv.index.Band(mid + lv.cam.CellH/2)
		for e := range lv.index.InBands(top, bottom) {
			if _, ey := lv.cam.ToScreen(e.X(), e.Y()); ey == sy && e.Behavior != nil {
				e.Behavior.Draw(e, &lv.cam)
			}
		}
	}

	lv.drawHealth(scr, b)
}

func (lv *Level) drawHealth(scr *core.Screen, b core.Rect) {
	const width = 20
	ratio := core.ClampF(lv.hero.HP/lv.hero.Char.MaxHP, 0, 1)
	filled := int(math.Ceil(ratio * width))

	scr.DrawTextColor(b.X+1, b.Y, "HP", core.ColorWhite)
	scr.FillRect(core.NewRect(b.X+4, b.Y, width, 1), core.Cell{Rune: ' ', Bg: core.ColorDarkGray})
	scr.FillRect(core.NewRect(b.X+4, b.Y, filled, 1), core.Cell{Rune: ' ', Bg: core.ColorRed})
}

func tileCell(t dungeon.Tile) core.Cell {
	switch {
	case t&dungeon.TileExit != 0:
		return core.Cell{Rune: '>', Color: core.ColorBrightYellow}
	case t&dungeon.TileEntrance != 0:
		return core.Cell{Rune: '<', Color: core.ColorCyan}
	case t.Solid():
		return core.Cell{Rune: '#', Color: core.ColorGray}
	case t&dungeon.TileShadow != 0:
		return core.Cell{Rune: '·', Color: core.ColorDarkGray, Bg: core.ColorShadow}
	default:
		return core.Cell{Rune: '·', Color: core.ColorDarkGray}
	}
}

// follow keeps the player inside the middle of the view.
func (lv *Level) follow() {
	if lv.cam.Screen == nil {
		return
	}
	slackX := float64(lv.cam.Screen.Width()) / 2 * lv.cam.CellW * cameraSlack
	slackY := float64(lv.cam.Screen.Height()) / 2 * lv.cam.CellH * cameraSlack

	px, py := lv.player.Pos()
	lv.cam.X = core.ClampF(lv.cam.X, px-slackX, px+slackX)
	lv.cam.Y = core.ClampF(lv.cam.Y, py-slackY, py+slackY)
}

func (lv *Level) onExit() bool {
	tx, ty := lv.tiles.TileAt(lv.player.Pos())
	return lv.tiles.At(tx, ty)&dungeon.TileExit != 0
}

// showResult pushes the win or death overlay once.
func (lv *Level) showResult(s *engine.State) {
	if lv.shown {
		return
	}
	lv.shown = true

	cfg := lv.sess.Config.Gamemaster
	switch lv.result {
	case ResultWin:
		s.Game().Push(NewWin(lv))
	case ResultDeath:
		s.Game().Push(NewDeath(cfg.DeathFlashTicks, cfg.DeathFadeTicks))
	}
}

// kill despawns a dead enemy, credits the player and may drop a coin.
func (lv *Level) kill(victim, killer *world.Entity) {
	lv.index.Despawn(victim)

	if killer != nil {
		if p, ok := killer.Behavior.(*Projectile); ok {
			killer = p.Shooter()
		}
	}
	if killer == lv.player {
		lv.kills++
	}

	rng := lv.sess.Rand
	if rng.Float64() < lv.sess.Config.Gamemaster.CoinChance {
		lv.index.Spawn(newCoin(1+rng.Intn(2)), victim.X(), victim.Y())
	}
}

// spawnEnemy creates an enemy of a configured kind.
func (lv *Level) spawnEnemy(ch config.Character, x, y float64) (*world.Entity, error) {
	factory, err := Actors.Get(ch.Behavior)
	if err != nil {
		return nil, err
	}
	e := world.NewEntity(KindEnemy, ch.Hitbox, ch.Sprite(), factory(ch, lv))
	e.NoClip = !ch.Steps()
	return lv.index.Spawn(e, x, y), nil
}

// Spawner is a level substate that spawns a random enemy just outside the
// view every interval ticks.
type Spawner struct {
	engine.Base

	level    *Level
	interval int
	offset   uint64
	attempts int
}

// NewSpawner creates a spawner substate for lv.
func NewSpawner(lv *Level, interval int) *engine.State {
	sp := &Spawner{
		level:    lv,
		interval: max(1, interval),
		attempts: max(1, lv.sess.Config.Gamemaster.SpawnAttempts),
	}
	sp.offset = uint64(lv.sess.Rand.Intn(60))
	return engine.NewState("spawner", sp)
}

// OnTick spawns on the spawner's own phase of the interval.
func (sp *Spawner) OnTick(s *engine.State, tick uint64) {
	if (tick+sp.offset)%uint64(sp.interval) == 0 {
		sp.spawn()
	}
}

func (sp *Spawner) spawn() {
	lv := sp.level
	enemies := lv.sess.Config.Enemies
	if len(enemies) == 0 || lv.cam.Screen == nil {
		return
	}
	rng := lv.sess.Rand
	ch := enemies[rng.Intn(len(enemies))]

	hw := float64(lv.cam.Screen.Width()) / 2 * lv.cam.CellW
	hh := float64(lv.cam.Screen.Height()) / 2 * lv.cam.CellH
	dist := math.Hypot(hw, hh)
	mapW := float64(lv.tiles.W) * lv.tiles.TileSize
	mapH := float64(lv.tiles.H) * lv.tiles.TileSize

	for range sp.attempts {
		theta := rng.Float64() * 2 * math.Pi
		x := math.Cos(theta)*dist + lv.cam.X
		y := math.Sin(theta)*dist + lv.cam.Y
		if x < 0 || y < 0 || x >= mapW || y >= mapH || lv.tiles.CircleCollidesSolid(x, y, ch.Hitbox) {
			continue
		}
		if _, err := lv.spawnEnemy(ch, x, y); err != nil {
			lv.sess.Logger.Warn("enemy spawn failed", "enemy", ch.ID, "err", err)
		}
		return
	}
}
