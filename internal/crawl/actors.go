package crawl

import (
	"fmt"
	"math"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/core"
	"github.com/vovakirdan/tui-dungeon/internal/registry"
	"github.com/vovakirdan/tui-dungeon/internal/world"
)

// Entity kinds.
const (
	KindPlayer     = "player"
	KindEnemy      = "enemy"
	KindProjectile = "projectile"
	KindCoin       = "coin"
)

// ActorFactory builds the behavior of a configured character on a level.
type ActorFactory func(ch config.Character, lv *Level) world.Behavior

// Actors holds the behavior kinds a character entry can name.
var Actors = registry.New[ActorFactory]("behavior")

func init() {
	Actors.Register("player", "Player: steered by input, fires at the nearest enemy",
		func(ch config.Character, lv *Level) world.Behavior { return newHero(ch, lv) })
	Actors.Register("chaser", "Enemy: walks straight at the player",
		func(ch config.Character, lv *Level) world.Behavior { return newEnemy(ch, lv, false) })
	Actors.Register("flanker", "Enemy: closes in at an angle",
		func(ch config.Character, lv *Level) world.Behavior { return newEnemy(ch, lv, true) })
}

// ValidateBehaviors checks that every character names a registered
// behavior and that players use the player behavior.
func ValidateBehaviors(cfg config.Config) error {
	for _, ch := range cfg.Players {
		if ch.Behavior != "player" {
			return fmt.Errorf("crawl: player %q must use behavior \"player\", got %q", ch.ID, ch.Behavior)
		}
	}
	for _, ch := range cfg.Enemies {
		if _, err := Actors.Get(ch.Behavior); err != nil {
			return fmt.Errorf("crawl: enemy %q: %w", ch.ID, err)
		}
		if ch.Behavior == "player" {
			return fmt.Errorf("crawl: enemy %q cannot use behavior \"player\"", ch.ID)
		}
	}
	return nil
}

const (
	recalcInterval = 20 // Ticks between enemy direction updates
	pickupRange    = 2  // Coin pickup range in player radii
	coinRadius     = 6
	hitFlashTicks  = 6
	dragFullRadius = 4.0 // Pointer drag in cells for full speed
	padDeadzone    = 0.1
)

// Gamepad buttons of the standard mapping.
const (
	padUp    = 12
	padDown  = 13
	padLeft  = 14
	padRight = 15
)

// Fighter is the health bookkeeping shared by heroes and enemies.
type Fighter struct {
	Char config.Character
	HP   float64

	level *Level
	hit   bool
	hitAt uint64
}

func newFighter(ch config.Character, lv *Level) Fighter {
	return Fighter{Char: ch, HP: ch.MaxHP, level: lv}
}

// Hit applies damage unless the fighter is still in its damage cooldown.
func (f *Fighter) Hit(e *world.Entity, source *world.Entity, damage float64) bool {
	tick := f.level.tick
	if f.hit && tick <= f.hitAt+uint64(f.Char.DamageCooldown) {
		return false
	}
	f.hit = true
	f.hitAt = tick
	f.HP -= damage
	return true
}

// Invulnerable reports whether the fighter ignores hits on tick.
func (f *Fighter) Invulnerable(tick uint64) bool {
	return f.hit && tick <= f.hitAt+uint64(f.Char.DamageCooldown)
}

// Hero is the player behavior: it moves by input, picks up coins and
// fires at the nearest enemy in range.
type Hero struct {
	Fighter
	Coins int

	attacked bool
	attackAt uint64
	moved    bool
}

func newHero(ch config.Character, lv *Level) *Hero {
	return &Hero{Fighter: newFighter(ch, lv)}
}

// Tick moves the hero, resolves contacts and fires.
func (h *Hero) Tick(e *world.Entity, tick uint64) {
	lv := h.level
	vx, vy := h.steer()
	h.moved = (vx != 0 || vy != 0) && e.MoveBy(vx, vy)

	x, y := e.Pos()
	pickup := e.Radius + coinRadius + pickupRange*e.Radius

	var target *world.Entity
	best := math.Inf(1)

	for other := range lv.index.Near(x, y, h.Char.Range) {
		d2 := core.Dist2(x, y, other.X(), other.Y())

		switch b := other.Behavior.(type) {
		case *Coin:
			if d2 < pickup*pickup {
				h.Coins += b.Quantity
				lv.index.Despawn(other)
			}
		case *Enemy:
			if d2 < best {
				target, best = other, d2
			}
			reach := h.Char.Hitbox + other.Radius
			if d2 < reach*reach {
				h.Hit(e, other, b.Char.AttackDamage)
			}
		}
	}

	if target != nil && (!h.attacked || tick >= h.attackAt+uint64(h.Char.AttackCooldown)) {
		h.attacked = true
		h.attackAt = tick
		h.fire(e, target)
	}
}

// steer returns the per-tick velocity from keys, pointer drag and gamepad,
// averaging the sources that are active on each axis.
func (h *Hero) steer() (float64, float64) {
	g := h.level.game
	if g == nil {
		return 0, 0
	}

	var dx, dy float64
	var nx, ny int
	addX := func(v float64) { dx += v; nx++ }
	addY := func(v float64) { dy += v; ny++ }

	if p := g.Pointer(); p.Down {
		// Cells are about twice as tall as wide.
		px := float64(p.X - p.DownX)
		py := float64(p.Y-p.DownY) * 2
		if dist := math.Hypot(px, py); dist > 0 {
			ratio := math.Min(dist/dragFullRadius, 1)
			addX(px / dist * ratio)
			addY(py / dist * ratio)
		}
	}

	if g.KeyHeld(core.KeyLeft) {
		addX(-1)
	}
	if g.KeyHeld(core.KeyRight) {
		addX(1)
	}
	if g.KeyHeld(core.KeyUp) {
		addY(-1)
	}
	if g.KeyHeld(core.KeyDown) {
		addY(1)
	}

	if pad := g.Gamepad(); pad.Connected {
		if math.Abs(pad.LeftX) > padDeadzone {
			addX(pad.LeftX)
		}
		if math.Abs(pad.LeftY) > padDeadzone {
			addY(pad.LeftY)
		}
		if pad.Pressed(padLeft) {
			addX(-1)
		}
		if pad.Pressed(padRight) {
			addX(1)
		}
		if pad.Pressed(padUp) {
			addY(-1)
		}
		if pad.Pressed(padDown) {
			addY(1)
		}
	}

	if nx > 0 {
		dx /= float64(nx)
	}
	if ny > 0 {
		dy /= float64(ny)
	}
	if dx == 0 && dy == 0 {
		return 0, 0
	}

	theta := math.Atan2(dy, dx)
	speed := h.Char.Speed
	return math.Abs(dx) * math.Cos(theta) * speed, math.Abs(dy) * math.Sin(theta) * speed
}

func (h *Hero) fire(e, target *world.Entity) {
	lv := h.level
	c := h.Char

	theta := math.Atan2(target.Y()-e.Y(), target.X()-e.X())
	theta += lv.sess.Rand.Float64()*c.AttackSpread - c.AttackSpread/2
	cos, sin := math.Cos(theta), math.Sin(theta)

	p := &Projectile{
		level:    lv,
		source:   e,
		vx:       cos * c.ProjectileSpeed,
		vy:       sin * c.ProjectileSpeed,
		damage:   c.AttackDamage,
		maxHits:  c.Pierce,
		maxTicks: max(1, int(c.Range/c.ProjectileSpeed)),
		startR:   c.AttackRadius,
		endR:     c.AttackEndRadius,
	}
	pe := world.NewEntity(KindProjectile, c.AttackRadius, core.Cell{Rune: '*', Color: core.ColorBrightYellow}, p)
	offset := e.Radius + pe.Radius
	lv.index.Spawn(pe, e.X()+cos*offset, e.Y()+sin*offset)
}

// Draw paints the hero, blinking while invulnerable.
func (h *Hero) Draw(e *world.Entity, cam *world.Camera) {
	sprite := e.Sprite
	if h.Invulnerable(cam.Tick) && (cam.Tick/4)%2 == 0 {
		sprite.Color = core.ColorBrightRed
	}
	cam.Blit(e.X(), e.Y(), sprite)
}

// Moved reports whether the hero moved on its last tick.
func (h *Hero) Moved() bool {
	return h.moved
}

// Enemy walks toward the player and damages it on contact. Flankers bend
// their approach by a per-enemy angle while inside their bias range.
type Enemy struct {
	Fighter

	flank  bool
	bias   float64
	offset uint64
	dx, dy float64
	aimed  bool
}

func newEnemy(ch config.Character, lv *Level, flank bool) *Enemy {
	rng := lv.sess.Rand
	spread := ch.TargetBiasSpread - ch.TargetBiasMin
	return &Enemy{
		Fighter: newFighter(ch, lv),
		flank:   flank,
		bias:    math.Pi * ((2*rng.Float64()-1)*spread + ch.TargetBiasMin),
		offset:  uint64(rng.Intn(recalcInterval)),
	}
}

// Tick steps toward the player.
func (en *Enemy) Tick(e *world.Entity, tick uint64) {
	target := en.level.player
	if target == nil || !target.Alive() {
		return
	}

	rise := target.Y() - e.Y()
	run := target.X() - e.X()
	dist := math.Hypot(rise, run) - target.Radius*0.5

	if !en.aimed || (tick+en.offset)%recalcInterval == 0 {
		en.aim(rise, run, dist)
	}

	step := math.Min(dist, en.Char.Speed)
	if step > 0 {
		e.MoveBy(en.dx*step, en.dy*step)
	}
}

func (en *Enemy) aim(rise, run, dist float64) {
	en.aimed = true
	if rise == 0 && run == 0 {
		en.dx, en.dy = 0, 0
		return
	}

	theta := math.Atan2(rise, run)
	reach := en.Char.TargetBiasRange
	biasDist := reach - dist

	if en.flank && reach > 0 && dist <= biasDist {
		// The bias is strongest when the enemy first enters the range
		// and fades as it closes in.
		coef := 1 - math.Min(biasDist, reach)/reach
		theta += en.bias * (1 - math.Pow(2, math.Sqrt(2*coef)))
	}
	en.dx, en.dy = math.Cos(theta), math.Sin(theta)
}

// Hit damages the enemy and despawns it when it dies.
func (en *Enemy) Hit(e *world.Entity, source *world.Entity, damage float64) bool {
	if !en.Fighter.Hit(e, source, damage) {
		return false
	}
	if en.HP <= 0 && e.Alive() {
		en.level.kill(e, source)
	}
	return true
}

// Draw paints the enemy, flashing white right after a hit.
func (en *Enemy) Draw(e *world.Entity, cam *world.Camera) {
	sprite := e.Sprite
	if en.hit && cam.Tick < en.hitAt+hitFlashTicks {
		sprite.Color = core.ColorBrightWhite
	}
	cam.Blit(e.X(), e.Y(), sprite)
}

// Projectile flies in a straight line, hitting up to maxHits enemies.
type Projectile struct {
	level  *Level
	source *world.Entity

	vx, vy   float64
	damage   float64
	hits     int
	maxHits  int
	ticks    int
	maxTicks int
	startR   float64
	endR     float64
}

// Tick moves the projectile and applies hits.
func (p *Projectile) Tick(e *world.Entity, tick uint64) {
	lv := p.level
	p.ticks++
	if p.ticks > p.maxTicks {
		lv.index.Despawn(e)
		return
	}
	if p.endR > 0 {
		e.Radius = p.startR + float64(p.ticks)/float64(p.maxTicks)*(p.endR-p.startR)
	}

	// Projectiles stop at walls instead of sliding along them.
	x, y := e.X()+p.vx, e.Y()+p.vy
	if lv.tiles.CircleCollidesSolid(x, y, e.Radius) {
		lv.index.Despawn(e)
		return
	}
	e.SetPos(x, y)

	for other := range lv.index.Near(x, y, e.Radius) {
		if _, ok := other.Behavior.(*Enemy); !ok {
			continue
		}
		p.hits++
		other.Behavior.Hit(other, e, p.damage)
		if p.maxHits > 0 && p.hits >= p.maxHits {
			lv.index.Despawn(e)
			return
		}
	}
}

// Draw paints small projectiles as a glyph and large ones as a disc.
func (p *Projectile) Draw(e *world.Entity, cam *world.Camera) {
	rx := e.Radius / cam.CellW
	ry := e.Radius / cam.CellH
	if rx < 0.75 {
		cam.Blit(e.X(), e.Y(), e.Sprite)
		return
	}
	sx, sy := cam.ToScreen(e.X(), e.Y())
	cam.Screen.FillCircle(float64(sx)+0.5, float64(sy)+0.5, rx, ry, e.Sprite)
}

// Hit is a no-op; projectiles cannot be damaged.
func (p *Projectile) Hit(*world.Entity, *world.Entity, float64) bool {
	return false
}

// Shooter returns the entity that fired the projectile.
func (p *Projectile) Shooter() *world.Entity {
	return p.source
}

// Coin is dropped by enemies and picked up by the hero.
type Coin struct {
	Quantity int
}

// Tick is a no-op.
func (c *Coin) Tick(*world.Entity, uint64) {}

// Draw paints the coin.
func (c *Coin) Draw(e *world.Entity, cam *world.Camera) {
	cam.Blit(e.X(), e.Y(), e.Sprite)
}

// Hit is a no-op.
func (c *Coin) Hit(*world.Entity, *world.Entity, float64) bool {
	return false
}

func newCoin(quantity int) *world.Entity {
	color := core.ColorYellow
	if quantity > 1 {
		color = core.ColorBrightYellow
	}
	return world.NewEntity(KindCoin, coinRadius, core.Cell{Rune: '$', Color: color}, &Coin{Quantity: quantity})
}
