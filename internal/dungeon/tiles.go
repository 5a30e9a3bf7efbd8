package dungeon

import (
	"math"
	"strings"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// Tile is one cell of the dungeon grid. The low byte selects the shape a
// renderer draws, the upper bits are flags.
type Tile uint16

const (
	TileMask     Tile = 0x00ff
	TileSolid    Tile = 0x0100
	TileShadow   Tile = 0x0200
	TileEntrance Tile = 0x0400
	TileExit     Tile = 0x0800

	TileFloor Tile = 0x0000
	TileWall  Tile = TileSolid | 0x01
)

// Solid reports whether the tile blocks movement.
func (t Tile) Solid() bool {
	return t&TileSolid != 0
}

// Shape returns the renderer selector in the low byte.
func (t Tile) Shape() uint8 {
	return uint8(t & TileMask)
}

// Point is a tile coordinate.
type Point struct {
	X, Y int
}

// TileMap is a fixed-size grid of tiles. World coordinates map onto it with
// TileSize world units per tile.
type TileMap struct {
	W, H     int
	TileSize float64
	tiles    []Tile
}

// NewTileMap creates an all-floor map.
func NewTileMap(w, h int, tileSize float64) *TileMap {
	if tileSize <= 0 {
		tileSize = 1
	}
	return &TileMap{
		W:        w,
		H:        h,
		TileSize: tileSize,
		tiles:    make([]Tile, w*h),
	}
}

// InBounds reports whether (x, y) is on the map.
func (m *TileMap) InBounds(x, y int) bool {
	return x >= 0 && x < m.W && y >= 0 && y < m.H
}

// At returns the tile at (x, y). Everything off the map reads as wall.
func (m *TileMap) At(x, y int) Tile {
	if !m.InBounds(x, y) {
		return TileWall
	}
	return m.tiles[y*m.W+x]
}

// Set stores a tile. Out-of-bounds writes are ignored.
func (m *TileMap) Set(x, y int, t Tile) {
	if m.InBounds(x, y) {
		m.tiles[y*m.W+x] = t
	}
}

// Mark ORs flag bits into the tile at (x, y).
func (m *TileMap) Mark(x, y int, flags Tile) {
	if m.InBounds(x, y) {
		m.tiles[y*m.W+x] |= flags
	}
}

// Fill sets every tile in r.
func (m *TileMap) Fill(r core.Rect, t Tile) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			m.Set(x, y, t)
		}
	}
}

// Solid reports whether the tile at (x, y) blocks movement.
func (m *TileMap) Solid(x, y int) bool {
	return m.At(x, y).Solid()
}

// TileAt converts a world position to the tile containing it.
func (m *TileMap) TileAt(wx, wy float64) (int, int) {
	return int(math.Floor(wx / m.TileSize)), int(math.Floor(wy / m.TileSize))
}

// TileCenter returns the world position of a tile's center.
func (m *TileMap) TileCenter(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * m.TileSize, (float64(y) + 0.5) * m.TileSize
}

// CircleCollidesSolid reports whether a circle in world coordinates
// overlaps any solid tile.
func (m *TileMap) CircleCollidesSolid(cx, cy, r float64) bool {
	x0, y0 := m.TileAt(cx-r, cy-r)
	x1, y1 := m.TileAt(cx+r, cy+r)
	s := m.TileSize
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !m.Solid(x, y) {
				continue
			}
			if core.CircleIntersectsRect(cx, cy, r, float64(x)*s, float64(y)*s, s, s) {
				return true
			}
		}
	}
	return false
}

// Find returns the first tile carrying all of the given flags.
func (m *TileMap) Find(flags Tile) (Point, bool) {
	for i, t := range m.tiles {
		if t&flags == flags {
			return Point{X: i % m.W, Y: i / m.W}, true
		}
	}
	return Point{}, false
}

// Reachable flood-fills the open tiles 4-connected to start.
// The result is indexed [y][x]; a solid start yields an all-false grid.
func (m *TileMap) Reachable(start Point) [][]bool {
	seen := make([][]bool, m.H)
	for y := range seen {
		seen[y] = make([]bool, m.W)
	}
	if m.Solid(start.X, start.Y) {
		return seen
	}

	stack := []Point{start}
	seen[start.Y][start.X] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			n := Point{X: p.X + d.X, Y: p.Y + d.Y}
			if !m.InBounds(n.X, n.Y) || seen[n.Y][n.X] || m.Solid(n.X, n.Y) {
				continue
			}
			seen[n.Y][n.X] = true
			stack = append(stack, n)
		}
	}
	return seen
}

// String renders the map as ASCII: '#' wall, '.' floor, '<' entrance, '>' exit.
func (m *TileMap) String() string {
	var sb strings.Builder
	sb.Grow((m.W + 1) * m.H)
	for y := 0; y < m.H; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < m.W; x++ {
			t := m.At(x, y)
			switch {
			case t&TileEntrance != 0:
				sb.WriteByte('<')
			case t&TileExit != 0:
				sb.WriteByte('>')
			case t.Solid():
				sb.WriteByte('#')
			default:
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
