package world

import (
	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// Behavior is the per-kind logic of an entity. The value usually carries the
// kind's own state (health, cooldowns, targets).
type Behavior interface {
	// Tick advances the entity by one simulation step.
	Tick(e *Entity, tick uint64)
	// Draw paints the entity through the camera.
	Draw(e *Entity, cam *Camera)
	// Hit applies damage from source (nil for environmental damage) and
	// reports whether it landed.
	Hit(e *Entity, source *Entity, damage float64) bool
}

// Collider answers tile collision queries for MoveBy.
type Collider interface {
	CircleCollidesSolid(x, y, r float64) bool
}

// Entity is a positioned object tracked by an Index.
//
// Position writes go through SetX/SetY so the index can relocate the entity
// between row bands. All list membership is owned by the index.
type Entity struct {
	Kind     string
	Radius   float64
	Sprite   core.Cell
	FlipH    bool
	NoClip   bool
	Behavior Behavior

	id    uint64
	x, y  float64
	index *Index

	live           bool
	spawnPending   bool
	despawnPending bool
	movePending    bool

	queued    bool
	nextQueue *Entity

	band    int
	inRow   bool
	rowPrev *Entity
	rowNext *Entity
	rowTail *Entity // valid on a row head only

	prev *Entity
	next *Entity
}

// NewEntity creates a detached entity.
func NewEntity(kind string, radius float64, sprite core.Cell, b Behavior) *Entity {
	return &Entity{
		Kind:     kind,
		Radius:   radius,
		Sprite:   sprite,
		Behavior: b,
	}
}

// ID returns the identifier assigned on first spawn, or 0.
func (e *Entity) ID() uint64 {
	return e.id
}

// X returns the horizontal position.
func (e *Entity) X() float64 {
	return e.x
}

// Y returns the vertical position.
func (e *Entity) Y() float64 {
	return e.y
}

// Pos returns both coordinates.
func (e *Entity) Pos() (float64, float64) {
	return e.x, e.y
}

// Index returns the index the entity is spawned into (or pending in).
func (e *Entity) Index() *Index {
	return e.index
}

// Live reports whether the entity is in the index lists.
func (e *Entity) Live() bool {
	return e.live
}

// Alive reports whether the entity is live and not about to be despawned.
func (e *Entity) Alive() bool {
	return e.live && !e.despawnPending
}

// SetX moves the entity horizontally. Rows are banded on y only, so no
// relocation is needed.
func (e *Entity) SetX(x float64) {
	if !core.Finite(x) {
		violate("set x", ErrNonFinite)
	}
	if x != e.x {
		e.FlipH = x < e.x
	}
	e.x = x
}

// SetY moves the entity vertically and schedules a row relocation when it
// crosses into another band.
func (e *Entity) SetY(y float64) {
	if !core.Finite(y) {
		violate("set y", ErrNonFinite)
	}
	e.y = y
	if e.index != nil {
		e.index.refresh(e)
	}
}

// SetPos sets both coordinates.
func (e *Entity) SetPos(x, y float64) {
	e.SetX(x)
	e.SetY(y)
}

// MoveBy moves the entity by (dx, dy), sliding along solid tiles of the
// index's collider. It reports whether the entity moved at all.
func (e *Entity) MoveBy(dx, dy float64) bool {
	var c Collider
	if e.index != nil {
		c = e.index.collider
	}
	if c == nil || e.NoClip {
		e.SetPos(e.x+dx, e.y+dy)
		return dx != 0 || dy != 0
	}

	switch {
	case !c.CircleCollidesSolid(e.x+dx, e.y+dy, e.Radius):
		e.SetPos(e.x+dx, e.y+dy)
	case dx != 0 && !c.CircleCollidesSolid(e.x+dx, e.y, e.Radius):
		e.SetX(e.x + dx)
	case dy != 0 && !c.CircleCollidesSolid(e.x, e.y+dy, e.Radius):
		e.SetY(e.y + dy)
	default:
		return false
	}
	return true
}

// Camera maps world coordinates onto a screen. One screen cell covers
// CellW x CellH world units and the camera center sits mid-screen.
type Camera struct {
	Screen *core.Screen
	X, Y   float64
	CellW  float64
	CellH  float64
	Tick   uint64
}

// ToScreen converts a world position to a screen cell.
func (c *Camera) ToScreen(x, y float64) (int, int) {
	sx := (x-c.X)/c.CellW + float64(c.Screen.Width())/2
	sy := (y-c.Y)/c.CellH + float64(c.Screen.Height())/2
	return floor(sx), floor(sy)
}

// ToWorld converts a screen cell to the world position of its center.
func (c *Camera) ToWorld(sx, sy int) (float64, float64) {
	x := (float64(sx)+0.5-float64(c.Screen.Width())/2)*c.CellW + c.X
	y := (float64(sy)+0.5-float64(c.Screen.Height())/2)*c.CellH + c.Y
	return x, y
}

// Visible reports whether a circle is at least partly on screen.
func (c *Camera) Visible(x, y, r float64) bool {
	hw := float64(c.Screen.Width()) / 2 * c.CellW
	hh := float64(c.Screen.Height()) / 2 * c.CellH
	return x+r >= c.X-hw && x-r <= c.X+hw && y+r >= c.Y-hh && y-r <= c.Y+hh
}

// Blit draws a sprite cell at a world position.
func (c *Camera) Blit(x, y float64, sprite core.Cell) {
	sx, sy := c.ToScreen(x, y)
	c.Screen.Blit(sx, sy, sprite)
}
