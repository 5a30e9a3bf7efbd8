// Package world keeps track of live entities for a dungeon level.
//
// An Index stores every live entity twice: in a spawn-order list used for
// ticking and proximity scans, and in one row list per horizontal band of
// the world so a renderer can interleave entities with tile rows. Spawning,
// despawning and band changes are staged on the entity and applied together
// by Update, so behaviors can freely spawn and despawn while the index is
// being iterated.
package world

import (
	"iter"
	"math"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// Options configures an Index.
type Options struct {
	// BandSize is the height of one row band in world units.
	BandSize float64
	// RowAllowance is the number of bands above y=0 the row table covers
	// before it has to grow.
	RowAllowance int
	// Collider is used by Entity.MoveBy for entities in this index.
	Collider Collider
}

// Index is the spatial entity registry of one level. It is not safe for
// concurrent use.
type Index struct {
	bandSize float64
	offset   int
	rows     []*Entity
	collider Collider

	head  *Entity
	tail  *Entity
	count int

	queue  *Entity
	nextID uint64
}

// NewIndex creates an empty index.
func NewIndex(opts Options) *Index {
	if opts.BandSize <= 0 {
		opts.BandSize = 1
	}
	if opts.RowAllowance <= 0 {
		opts.RowAllowance = 64
	}
	return &Index{
		bandSize: opts.BandSize,
		offset:   opts.RowAllowance,
		rows:     make([]*Entity, opts.RowAllowance),
		collider: opts.Collider,
	}
}

// BandSize returns the height of one row band.
func (m *Index) BandSize() float64 {
	return m.bandSize
}

// Band returns the band containing y.
func (m *Index) Band(y float64) int {
	return floor(y / m.bandSize)
}

// Len returns the number of live entities.
func (m *Index) Len() int {
	return m.count
}

// Spawn stages e for insertion at (x, y). It takes effect on the next Update.
func (m *Index) Spawn(e *Entity, x, y float64) *Entity {
	switch {
	case e == nil:
		violate("spawn", ErrNilEntity)
	case e.index != nil && e.index != m:
		violate("spawn", ErrForeignIndex)
	case e.despawnPending:
		violate("spawn", ErrDespawnPending)
	case e.live || e.spawnPending:
		violate("spawn", ErrAlreadyLive)
	case !core.Finite(x) || !core.Finite(y):
		violate("spawn", ErrNonFinite)
	}

	e.index = m
	e.x, e.y = x, y
	e.spawnPending = true
	m.enqueue(e)
	return e
}

// Despawn stages e for removal. Repeated calls before Update are no-ops.
func (m *Index) Despawn(e *Entity) {
	switch {
	case e == nil:
		violate("despawn", ErrNilEntity)
	case e.index != m:
		if e.index == nil {
			violate("despawn", ErrNotLive)
		}
		violate("despawn", ErrForeignIndex)
	case e.spawnPending:
		violate("despawn", ErrSpawnPending)
	case e.despawnPending:
		return
	case !e.live:
		violate("despawn", ErrNotLive)
	}

	e.despawnPending = true
	m.enqueue(e)
}

// refresh schedules a row relocation if e moved into another band.
func (m *Index) refresh(e *Entity) {
	if !e.live || e.despawnPending || e.movePending {
		return
	}
	if m.Band(e.y) != e.band {
		e.movePending = true
		m.enqueue(e)
	}
}

func (m *Index) enqueue(e *Entity) {
	if e.queued {
		return
	}
	e.queued = true
	e.nextQueue = m.queue
	m.queue = e
}

// Update applies every staged spawn, despawn and relocation in the order
// they were staged. Entities staged while draining are applied as well, in a
// later pass.
func (m *Index) Update() {
	for m.queue != nil {
		// The queue is a stack; reverse it to apply oldest first.
		var batch *Entity
		for e := m.queue; e != nil; {
			next := e.nextQueue
			e.nextQueue = batch
			batch = e
			e = next
		}
		m.queue = nil

		for batch != nil {
			e := batch
			batch = e.nextQueue
			e.nextQueue = nil
			e.queued = false
			m.apply(e)
		}
	}
}

func (m *Index) apply(e *Entity) {
	insert := false

	switch {
	case e.spawnPending:
		e.spawnPending = false
		m.link(e)
		insert = true
	case e.movePending:
		m.remove(e)
		insert = true
	}
	e.movePending = false

	if e.despawnPending {
		e.despawnPending = false
		if e.inRow {
			m.remove(e)
		}
		m.unlink(e)
		e.index = nil
		return
	}
	if insert {
		m.insert(e)
	}
}

// link appends e to the spawn-order list.
func (m *Index) link(e *Entity) {
	if e.id == 0 {
		m.nextID++
		e.id = m.nextID
	}
	e.prev = m.tail
	e.next = nil
	if m.tail != nil {
		m.tail.next = e
	} else {
		m.head = e
	}
	m.tail = e
	e.live = true
	m.count++
}

func (m *Index) unlink(e *Entity) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		m.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		m.tail = e.prev
	}
	e.prev, e.next = nil, nil
	e.live = false
	m.count--
}

// insert appends e to the row of its current band, growing the row table
// first if the band lies above the covered range.
func (m *Index) insert(e *Entity) {
	band := m.Band(e.y)
	if band+m.offset < 0 {
		m.grow(band)
	}
	i := band + m.offset
	for i >= len(m.rows) {
		m.rows = append(m.rows, nil)
	}

	e.band = band
	e.inRow = true
	e.rowNext = nil
	if head := m.rows[i]; head == nil {
		m.rows[i] = e
		e.rowPrev = nil
		e.rowTail = e
	} else {
		tail := head.rowTail
		tail.rowNext = e
		e.rowPrev = tail
		e.rowTail = nil
		head.rowTail = e
	}
	m.check(e, "insert")
}

func (m *Index) remove(e *Entity) {
	m.check(e, "remove")
	i := e.band + m.offset
	head := m.rows[i]

	if head == e {
		next := e.rowNext
		m.rows[i] = next
		if next != nil {
			next.rowPrev = nil
			next.rowTail = e.rowTail
		}
	} else {
		e.rowPrev.rowNext = e.rowNext
		if e.rowNext != nil {
			e.rowNext.rowPrev = e.rowPrev
		} else {
			head.rowTail = e.rowPrev
		}
	}

	e.rowPrev, e.rowNext, e.rowTail = nil, nil, nil
	e.inRow = false
}

// grow doubles the negative allowance until band fits. Entities store their
// band, so shifting the table moves every live entity's row index with it.
func (m *Index) grow(band int) {
	offset := max(m.offset, 1)
	for band+offset < 0 {
		offset *= 2
	}
	shift := offset - m.offset
	rows := make([]*Entity, shift, shift+len(m.rows))
	m.rows = append(rows, m.rows...)
	m.offset = offset
}

// check asserts that e sits in a row: it is either the row head or has a
// predecessor in the row.
func (m *Index) check(e *Entity, op string) {
	i := e.band + m.offset
	if !e.inRow || i < 0 || i >= len(m.rows) {
		violate(op, ErrCorruptRow)
	}
	if m.rows[i] != e && e.rowPrev == nil {
		violate(op, ErrCorruptRow)
	}
}

// All iterates live entities oldest first.
func (m *Index) All() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for e := m.head; e != nil; {
			next := e.next
			if !yield(e) {
				return
			}
			e = next
		}
	}
}

// Row returns the entities of one band in insertion order.
func (m *Index) Row(band int) []*Entity {
	var out []*Entity
	for e := range m.InBands(band, band) {
		out = append(out, e)
	}
	return out
}

// InBands iterates the entities of bands from..to inclusive, band by band
// top to bottom, each band in insertion order.
func (m *Index) InBands(from, to int) iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for band := from; band <= to; band++ {
			i := band + m.offset
			if i < 0 || i >= len(m.rows) {
				continue
			}
			for e := m.rows[i]; e != nil; {
				next := e.rowNext
				if !yield(e) {
					return
				}
				e = next
			}
		}
	}
}

// Near iterates alive entities whose radius reaches within dist of (x, y),
// in spawn order. It scans the whole population.
func (m *Index) Near(x, y, dist float64) iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for e := range m.All() {
			if e.despawnPending {
				continue
			}
			reach := dist + e.Radius
			if core.Dist2(x, y, e.x, e.y) < reach*reach {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Within collects the entities Near would yield, leaving out skip.
func (m *Index) Within(x, y, dist float64, skip *Entity) []*Entity {
	var out []*Entity
	for e := range m.Near(x, y, dist) {
		if e != skip {
			out = append(out, e)
		}
	}
	return out
}

// Nearest returns the closest alive entity accepted by match within dist,
// measured center to center.
func (m *Index) Nearest(x, y, dist float64, match func(*Entity) bool) (*Entity, bool) {
	var best *Entity
	bestD := dist * dist
	for e := range m.All() {
		if e.despawnPending || (match != nil && !match(e)) {
			continue
		}
		if d := core.Dist2(x, y, e.x, e.y); d < bestD {
			best, bestD = e, d
		}
	}
	return best, best != nil
}

// Tick runs the behavior of every live entity in spawn order. Entities
// despawned earlier in the same pass are skipped.
func (m *Index) Tick(tick uint64) {
	for e := range m.All() {
		if e.despawnPending || e.Behavior == nil {
			continue
		}
		e.Behavior.Tick(e, tick)
	}
}

func floor(v float64) int {
	return int(math.Floor(v))
}
