// Package dungeon generates tile dungeons by recursive space partition.
//
// The interior of a bordered grid is split by a wall with a hallway gap.
// The hallway band stays open across the whole divided area, and the four
// quadrants around it are divided again up to a maximum depth. Since every
// quadrant touches the band of the division that produced it, all open
// tiles end up connected.
package dungeon

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// ErrNoInterior is returned when the border leaves no room to generate in.
var ErrNoInterior = errors.New("dungeon: map has no interior")

// Config holds the generation parameters. All sizes are in tiles.
type Config struct {
	Width         int
	Height        int
	MaxDepth      int // Division levels below the root (0 = single room)
	Border        int // Solid border thickness
	WallThickness int
	HallWidth     int
	RoomMinSize   int // Minimum room extent on either side of a wall
	WallMinLength int // Minimum wall length on either side of a hallway
	LeafMinArea   int // Leaves with a smaller area are not used as endpoints
	LeafMinSide   int
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		Width:         60,
		Height:        40,
		MaxDepth:      4,
		Border:        5,
		WallThickness: 2,
		HallWidth:     3,
		RoomMinSize:   4,
		WallMinLength: 3,
		LeafMinArea:   10,
		LeafMinSide:   3,
	}
}

// Validate checks that the parameters describe a generatable map.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("dungeon: invalid size %dx%d", c.Width, c.Height)
	case c.MaxDepth < 0:
		return fmt.Errorf("dungeon: negative max depth %d", c.MaxDepth)
	case c.Border < 0 || c.WallThickness < 1 || c.HallWidth < 1:
		return fmt.Errorf("dungeon: border %d, wall %d and hall %d must be positive",
			c.Border, c.WallThickness, c.HallWidth)
	case c.RoomMinSize < 1 || c.WallMinLength < 0:
		return fmt.Errorf("dungeon: invalid room min %d or wall min %d", c.RoomMinSize, c.WallMinLength)
	}
	return nil
}

// Division records one split of a rectangle.
//
// Vertical divisions place a wall of columns and split along x; the hallway
// is then a band of rows. Horizontal divisions are the transpose.
type Division struct {
	Area      core.Rect
	Depth     int
	Vertical  bool
	RoomA     core.Rect
	RoomB     core.Rect
	WallA     core.Rect
	WallB     core.Rect
	Hall      core.Rect    // Gap in the wall
	Band      core.Rect    // Hallway band across the whole area, kept open
	Quadrants [4]core.Rect // Room A before the band, room B before, room A after, room B after
	Children  [4]*Division // Subdivisions of the quadrants, nil when not divided
}

// Dungeon is the result of a generation run.
type Dungeon struct {
	Tiles    *TileMap
	Root     *Division // nil when the interior was too small to divide
	Leaves   []core.Rect
	Entrance Point
	Exit     Point
}

// Generate builds a dungeon from cfg, drawing every random decision from rng.
// The same config and rng stream always produce the same dungeon.
func Generate(cfg Config, rng *rand.Rand, tileSize float64) (*Dungeon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	interior := core.NewRect(0, 0, cfg.Width, cfg.Height).Inset(cfg.Border)
	if interior.Empty() {
		return nil, ErrNoInterior
	}

	g := &generator{cfg: cfg, rng: rng}
	tiles := NewTileMap(cfg.Width, cfg.Height, tileSize)
	tiles.Fill(core.NewRect(0, 0, cfg.Width, cfg.Height), TileWall)
	tiles.Fill(interior, TileFloor)

	d := &Dungeon{Tiles: tiles}
	// An undivided root records the interior as its only leaf.
	if d.Root = g.divide(interior, 0); d.Root != nil {
		d.Root.carve(tiles)
	}
	markShadows(tiles)

	d.Leaves = g.usableLeaves()
	if len(d.Leaves) == 0 {
		d.Leaves = g.leaves
	}
	if len(d.Leaves) == 0 {
		d.Leaves = []core.Rect{interior}
	}
	d.Entrance, d.Exit = g.endpoints(d.Leaves)
	tiles.Mark(d.Entrance.X, d.Entrance.Y, TileEntrance)
	tiles.Mark(d.Exit.X, d.Exit.Y, TileExit)
	return d, nil
}

type generator struct {
	cfg    Config
	rng    *rand.Rand
	leaves []core.Rect
}

// divide splits area on a random axis, falling back to the other axis when
// the first one does not fit. It returns nil and records area as a leaf when
// neither fits or the depth limit is reached.
func (g *generator) divide(area core.Rect, depth int) *Division {
	if area.Empty() {
		return nil
	}
	if depth >= g.cfg.MaxDepth {
		g.leaves = append(g.leaves, area)
		return nil
	}

	vertical := g.rng.Intn(2) == 0
	if !g.fits(area, vertical) {
		vertical = !vertical
		if !g.fits(area, vertical) {
			g.leaves = append(g.leaves, area)
			return nil
		}
	}

	d := g.split(area, vertical)
	d.Depth = depth
	for i, q := range d.Quadrants {
		d.Children[i] = g.divide(q, depth+1)
	}
	return d
}

// fits reports whether area can hold two rooms with a wall between them and
// a hallway with minimum wall length on either side.
func (g *generator) fits(area core.Rect, vertical bool) bool {
	variable, fixed := area.H, area.W
	if vertical {
		variable, fixed = area.W, area.H
	}
	c := g.cfg
	return c.WallThickness+2*c.RoomMinSize <= variable && c.HallWidth+2*c.WallMinLength <= fixed
}

// split computes the geometry of one division. Offsets are measured on the
// variable axis (across the wall) and the fixed axis (along the wall), then
// mapped back to x/y.
func (g *generator) split(area core.Rect, vertical bool) *Division {
	c := g.cfg
	variable, fixed := area.H, area.W
	if vertical {
		variable, fixed = area.W, area.H
	}

	wall := c.RoomMinSize + g.rng.Intn(variable-2*c.RoomMinSize-c.WallThickness+1)
	hall := c.WallMinLength + g.rng.Intn(fixed-2*c.WallMinLength-c.HallWidth+1)
	afterWall := wall + c.WallThickness
	afterHall := hall + c.HallWidth

	// rect builds a rectangle from variable-axis [v0, v1) and fixed-axis [f0, f1).
	rect := func(v0, v1, f0, f1 int) core.Rect {
		if vertical {
			return core.NewRect(area.X+v0, area.Y+f0, v1-v0, f1-f0)
		}
		return core.NewRect(area.X+f0, area.Y+v0, f1-f0, v1-v0)
	}

	return &Division{
		Area:     area,
		Vertical: vertical,
		RoomA:    rect(0, wall, 0, fixed),
		RoomB:    rect(afterWall, variable, 0, fixed),
		WallA:    rect(wall, afterWall, 0, hall),
		WallB:    rect(wall, afterWall, afterHall, fixed),
		Hall:     rect(wall, afterWall, hall, afterHall),
		Band:     rect(0, variable, hall, afterHall),
		Quadrants: [4]core.Rect{
			rect(0, wall, 0, hall),
			rect(afterWall, variable, 0, hall),
			rect(0, wall, afterHall, fixed),
			rect(afterWall, variable, afterHall, fixed),
		},
	}
}

// carve writes the walls of d and its subdivisions.
func (d *Division) carve(tiles *TileMap) {
	tiles.Fill(d.WallA, TileWall)
	tiles.Fill(d.WallB, TileWall)
	for _, child := range d.Children {
		if child != nil {
			child.carve(tiles)
		}
	}
}

// Walk visits d and every subdivision depth-first.
func (d *Division) Walk(fn func(*Division)) {
	if d == nil {
		return
	}
	fn(d)
	for _, child := range d.Children {
		child.Walk(fn)
	}
}

func (g *generator) usableLeaves() []core.Rect {
	var out []core.Rect
	for _, r := range g.leaves {
		if r.Area() >= g.cfg.LeafMinArea && r.W >= g.cfg.LeafMinSide && r.H >= g.cfg.LeafMinSide {
			out = append(out, r)
		}
	}
	return out
}

// endpoints picks the entrance and exit tiles: the centers of the two leaves
// farthest apart, in coin-flip order. A single leaf puts them at its two
// horizontal ends.
func (g *generator) endpoints(leaves []core.Rect) (Point, Point) {
	if len(leaves) == 1 {
		r := leaves[0]
		_, cy := r.Center()
		a := Point{X: r.X + min(1, r.W-1), Y: cy}
		b := Point{X: r.Right() - 1 - min(1, r.W-1), Y: cy}
		if g.rng.Intn(2) == 1 {
			a, b = b, a
		}
		return a, b
	}

	center := func(r core.Rect) (float64, float64) {
		return float64(r.X) + float64(r.W)/2, float64(r.Y) + float64(r.H)/2
	}
	bestA, bestB, best := 0, 1, -1.0
	for i := range leaves {
		ax, ay := center(leaves[i])
		for j := i + 1; j < len(leaves); j++ {
			bx, by := center(leaves[j])
			if d := core.Dist2(ax, ay, bx, by); d > best {
				bestA, bestB, best = i, j, d
			}
		}
	}
	if g.rng.Intn(2) == 1 {
		bestA, bestB = bestB, bestA
	}

	ax, ay := leaves[bestA].Center()
	bx, by := leaves[bestB].Center()
	return Point{X: ax, Y: ay}, Point{X: bx, Y: by}
}

// markShadows flags open tiles directly below a solid tile.
func markShadows(tiles *TileMap) {
	for y := 1; y < tiles.H; y++ {
		for x := 0; x < tiles.W; x++ {
			if !tiles.Solid(x, y) && tiles.Solid(x, y-1) {
				tiles.Mark(x, y, TileShadow)
			}
		}
	}
}
