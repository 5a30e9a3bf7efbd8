// Package engine runs the simulation: a fixed-step clock that ticks a stack
// of states and draws the top one once per presentation frame.
//
// The host calls Frame with the elapsed wall time. Frame runs as many fixed
// ticks as needed to catch up (never dropping any), then issues one draw.
// Within a tick every stacked state is pre-ticked top to bottom and the top
// state is ticked; if that tick changes the top, the new top is ticked as
// well so a freshly pushed state is live before the frame is drawn.
package engine

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// GamepadSource is polled once per tick for the current gamepad state.
type GamepadSource interface {
	Poll() core.GamepadState
}

// NoGamepad is a GamepadSource that is never connected.
type NoGamepad struct{}

// Poll returns a disconnected state.
func (NoGamepad) Poll() core.GamepadState {
	return core.GamepadState{}
}

// Pointer is the last known pointer state in screen cells.
type Pointer struct {
	Down         bool
	X, Y         int
	DownX, DownY int
}

// Options configures a Game.
type Options struct {
	// TickRate is the number of simulation ticks per second (default 60).
	TickRate int
	// MaxStabilizePasses bounds the re-dispatch loop within one tick
	// (default 32).
	MaxStabilizePasses int
	// Logger receives stack transitions at debug level. Nil discards.
	Logger *log.Logger
	// Gamepad is polled once per tick. Nil means no gamepad.
	Gamepad GamepadSource
}

// Game owns a state stack and its clock. It is not safe for concurrent
// use; each host drives its own Game from a single goroutine.
type Game struct {
	tickNum      uint64
	tickTime     time.Duration
	tickDuration time.Duration
	frameTime    time.Duration
	maxPasses    int

	top    *State
	queue  []*State
	locked bool

	logger  *log.Logger
	gamepad GamepadSource
	pad     core.GamepadState
	keys    map[string]bool
	pointer Pointer

	viewW, viewH int
	quit         bool
}

// NewGame creates a game with an empty stack.
func NewGame(opts Options) *Game {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	if opts.MaxStabilizePasses <= 0 {
		opts.MaxStabilizePasses = 32
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Gamepad == nil {
		opts.Gamepad = NoGamepad{}
	}
	return &Game{
		tickDuration: time.Second / time.Duration(opts.TickRate),
		maxPasses:    opts.MaxStabilizePasses,
		logger:       opts.Logger,
		gamepad:      opts.Gamepad,
		keys:         make(map[string]bool),
	}
}

// Tick returns the number of ticks run so far.
func (g *Game) Tick() uint64 {
	return g.tickNum
}

// TickTime returns the simulated time of the next tick.
func (g *Game) TickTime() time.Duration {
	return g.tickTime
}

// TickDuration returns the fixed simulation step.
func (g *Game) TickDuration() time.Duration {
	return g.tickDuration
}

// Now returns the time passed to the last Frame.
func (g *Game) Now() time.Duration {
	return g.frameTime
}

// Top returns the active state, or nil for an empty stack.
func (g *Game) Top() *State {
	return g.top
}

// Depth returns the number of stacked states.
func (g *Game) Depth() int {
	n := 0
	for s := g.top; s != nil; s = s.prev {
		n++
	}
	return n
}

// Logger returns the game's logger.
func (g *Game) Logger() *log.Logger {
	return g.logger
}

// Frame advances the simulation up to now and draws the top state once.
func (g *Game) Frame(now time.Duration) {
	g.frameTime = now
	for g.tickTime <= now {
		g.step()
		g.tickNum++
		g.tickTime += g.tickDuration
	}
	if g.top != nil {
		g.top.Draw(g.tickNum, now)
	}
}

// step runs one tick: drain enqueued states, poll the gamepad, then
// pretick and dispatch until the top settles.
func (g *Game) step() {
	tick := g.tickNum

	queued := g.queue
	g.queue = nil
	for _, s := range queued {
		g.Push(s)
	}

	g.pad = g.gamepad.Poll()

	for pass := 0; ; pass++ {
		head := g.top
		if head == nil || head.dispatchAt == tick+1 {
			return
		}
		if pass >= g.maxPasses {
			violate("tick", head, ErrUnstableStack)
		}

		for s := head; s != nil; s = s.prev {
			s.Pretick(tick)
		}
		head.dispatchAt = tick + 1
		head.Tick(tick)

		if g.top == head {
			return
		}
	}
}

// Push places s on top of the stack and activates it.
func (g *Game) Push(s *State) *State {
	g.checkUnlocked("push", s)
	mustBeDetached("push", s)

	g.link(s, g.top, nil)
	g.logger.Debug("push", "state", s.Name, "depth", g.Depth())
	s.activate(g)
	return s
}

// Pop removes the top state, pushing its replacement if it has one.
func (g *Game) Pop() *State {
	s := g.top
	if s == nil {
		violate("pop", nil, ErrEmptyStack)
	}
	g.checkUnlocked("pop", s)
	g.remove(s, true)
	return s
}

// Replace swaps r in for the top state.
func (g *Game) Replace(r *State) *State {
	if g.top == nil {
		violate("replace", r, ErrEmptyStack)
	}
	return g.top.Replace(r)
}

// Enqueue defers pushing s to the start of the next tick. Queued states are
// pushed in the order they were enqueued.
func (g *Game) Enqueue(s *State) {
	g.checkUnlocked("enqueue", s)
	mustBeDetached("enqueue", s)
	for _, q := range g.queue {
		if q == s {
			violate("enqueue", s, ErrAlreadyActive)
		}
	}
	g.queue = append(g.queue, s)
	g.logger.Debug("enqueue", "state", s.Name, "queued", len(g.queue))
}

// Lock forbids stack edits until Unlock.
func (g *Game) Lock() {
	if g.locked {
		violate("lock", nil, ErrAlreadyLocked)
	}
	g.locked = true
}

// Unlock re-allows stack edits.
func (g *Game) Unlock() {
	if !g.locked {
		violate("unlock", nil, ErrNotLocked)
	}
	g.locked = false
}

// TryLock locks the stack if it is unlocked and reports whether it did.
func (g *Game) TryLock() bool {
	if g.locked {
		return false
	}
	g.locked = true
	return true
}

// Locked reports whether the stack is locked.
func (g *Game) Locked() bool {
	return g.locked
}

// Input records held keys and the pointer, then dispatches ev to the top
// state.
func (g *Game) Input(ev core.Event) {
	switch ev.Type {
	case core.EventKeyDown:
		g.keys[ev.Key] = true
	case core.EventKeyUp:
		delete(g.keys, ev.Key)
	case core.EventPointerDown:
		g.pointer = Pointer{Down: true, X: ev.X, Y: ev.Y, DownX: ev.X, DownY: ev.Y}
	case core.EventPointerMove:
		g.pointer.X, g.pointer.Y = ev.X, ev.Y
	case core.EventPointerUp:
		g.pointer.Down = false
		g.pointer.X, g.pointer.Y = ev.X, ev.Y
	}

	if g.top != nil {
		g.top.Input(ev)
	}
}

// KeyHeld reports whether a key is currently down.
func (g *Game) KeyHeld(key string) bool {
	return g.keys[key]
}

// AnyKeyHeld reports whether any of the keys is down.
func (g *Game) AnyKeyHeld(keys ...string) bool {
	for _, k := range keys {
		if g.keys[k] {
			return true
		}
	}
	return false
}

// ReleaseKeys forgets every held key.
func (g *Game) ReleaseKeys() {
	clear(g.keys)
}

// Pointer returns the last pointer state.
func (g *Game) Pointer() Pointer {
	return g.pointer
}

// Gamepad returns the state polled at the start of the current tick.
func (g *Game) Gamepad() core.GamepadState {
	return g.pad
}

// SetViewport records the host's drawing area in cells.
func (g *Game) SetViewport(w, h int) {
	g.viewW, g.viewH = w, h
}

// Viewport returns the host's drawing area in cells.
func (g *Game) Viewport() (int, int) {
	return g.viewW, g.viewH
}

// RequestQuit asks the host to end the program after the current frame.
func (g *Game) RequestQuit() {
	g.quit = true
}

// QuitRequested reports whether a state asked to quit.
func (g *Game) QuitRequested() bool {
	return g.quit
}

func (g *Game) checkUnlocked(op string, s *State) {
	if g.locked {
		violate(op, s, ErrLocked)
	}
}

// link inserts s between prev and next and inherits the surface and bounds
// of the state beneath.
func (g *Game) link(s *State, prev, next *State) {
	s.game = g
	s.prev = prev
	s.next = next
	if prev != nil {
		prev.next = s
		if s.surface == nil {
			s.surface = prev.surface
		}
		if s.bounds.Empty() {
			s.bounds = prev.bounds
		}
	}
	if next != nil {
		next.prev = s
	} else {
		g.top = s
	}
}

// remove unlinks s, pops it with its substates and, if replace is set,
// pushes its replacement into the freed slot.
func (g *Game) remove(s *State, replace bool) {
	prev, next := s.prev, s.next
	if prev != nil {
		prev.next = next
	}
	if next != nil {
		next.prev = prev
	} else {
		g.top = prev
	}
	g.logger.Debug("pop", "state", s.Name, "depth", g.Depth())

	s.deactivate()

	r := s.replacement
	s.replacement = nil
	if r == nil || !replace {
		return
	}
	mustBeDetached("replace", r)
	if next != nil {
		g.link(r, next.prev, next)
	} else {
		g.link(r, g.top, nil)
	}
	g.logger.Debug("push replacement", "state", r.Name, "for", s.Name)
	r.activate(g)
}
