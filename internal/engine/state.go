package engine

import (
	"time"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// State is a node of the state stack: one mode of the application such as a
// menu, a dungeon level or a pause overlay.
//
// A state is created detached, becomes active when pushed onto a Game (or
// onto an active parent as a substate) and is detached again when popped.
type State struct {
	Name string
	// Passthrough forwards tick, draw and input to the state beneath before
	// the state's own hook runs.
	Passthrough bool

	behavior Behavior
	game     *Game
	prev     *State
	next     *State

	parent   *State
	substate *State // top of the substate chain

	replacement *State
	surface     *core.Screen
	bounds      core.Rect

	pushed     bool
	pushTick   uint64
	pushTime   time.Duration
	duration   time.Duration
	pretickAt  uint64 // tick+1 of the last pretick
	dispatchAt uint64 // tick+1 of the last head dispatch
}

// Option configures a State at construction.
type Option func(*State)

// WithSurface sets the drawing surface. States without one inherit the
// surface of the state they are pushed onto.
func WithSurface(screen *core.Screen) Option {
	return func(s *State) { s.surface = screen }
}

// WithBounds sets the area of the surface the state draws in.
func WithBounds(r core.Rect) Option {
	return func(s *State) { s.bounds = r }
}

// WithPassthrough marks the state as an overlay.
func WithPassthrough() Option {
	return func(s *State) { s.Passthrough = true }
}

// WithReplacement queues r to be pushed in the state's slot when it is popped.
func WithReplacement(r *State) Option {
	return func(s *State) { s.replacement = r }
}

// NewState creates a detached state. A nil behavior is replaced by Base.
func NewState(name string, b Behavior, opts ...Option) *State {
	if b == nil {
		b = Base{}
	}
	s := &State{Name: name, behavior: b}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Behavior returns the state's behavior.
func (s *State) Behavior() Behavior {
	return s.behavior
}

// Game returns the game the state (or its parent) is stacked on, or nil.
func (s *State) Game() *Game {
	for s.parent != nil {
		s = s.parent
	}
	return s.game
}

// Active reports whether the state is reachable from a game's stack.
func (s *State) Active() bool {
	return s.Game() != nil
}

// Prev returns the state beneath (or the next older substate).
func (s *State) Prev() *State {
	return s.prev
}

// Next returns the state above (or the next newer substate).
func (s *State) Next() *State {
	return s.next
}

// Parent returns the state owning this substate.
func (s *State) Parent() *State {
	return s.parent
}

// Substate returns the top of the substate chain.
func (s *State) Substate() *State {
	return s.substate
}

// Surface returns the drawing surface.
func (s *State) Surface() *core.Screen {
	return s.surface
}

// SetSurface replaces the drawing surface.
func (s *State) SetSurface(screen *core.Screen) {
	s.surface = screen
}

// Bounds returns the drawing area. An empty rectangle means the whole surface.
func (s *State) Bounds() core.Rect {
	if s.bounds.Empty() && s.surface != nil {
		return s.surface.Bounds()
	}
	return s.bounds
}

// SetReplacement sets (or clears, with nil) the state pushed in this
// state's slot when it is popped.
func (s *State) SetReplacement(r *State) {
	s.replacement = r
}

// Duration returns the simulated time since the state was pushed, as of
// its last pretick.
func (s *State) Duration() time.Duration {
	return s.duration
}

// PushTick returns the tick number the state was pushed on.
func (s *State) PushTick() uint64 {
	return s.pushTick
}

// Pretick refreshes the state's duration and runs its pretick hooks. It runs
// at most once per tick number, however the state is reached.
func (s *State) Pretick(tick uint64) {
	if s.pretickAt == tick+1 {
		return
	}
	g := s.mustGame("pretick")
	s.pretickAt = tick + 1
	s.duration = g.tickTime - s.pushTime

	for _, sub := range s.substates() {
		if sub.parent == s {
			sub.Pretick(tick)
		}
	}
	s.behavior.OnPretick(s, tick)
}

// Tick dispatches one simulation tick: substates, then the state beneath
// for passthrough states, then the state's own hook.
func (s *State) Tick(tick uint64) {
	s.mustGame("tick")
	for _, sub := range s.substates() {
		if sub.parent == s {
			sub.Tick(tick)
		}
	}
	if s.forwards() && s.Active() {
		s.prev.Tick(tick)
	}
	if s.Active() {
		s.behavior.OnTick(s, tick)
	}
}

// Draw dispatches a draw pass in the same order as Tick, so overlays paint
// over the states beneath.
func (s *State) Draw(tick uint64, now time.Duration) {
	s.mustGame("draw")
	for _, sub := range s.substates() {
		if sub.parent == s {
			sub.Draw(tick, now)
		}
	}
	if s.forwards() {
		s.prev.Draw(tick, now)
	}
	s.behavior.OnDraw(s, tick, now)
}

// Input dispatches an input event in the same order as Tick.
func (s *State) Input(ev core.Event) {
	s.mustGame("input")
	for _, sub := range s.substates() {
		if sub.parent == s {
			sub.Input(ev)
		}
	}
	if s.forwards() && s.Active() {
		s.prev.Input(ev)
	}
	if s.Active() {
		s.behavior.OnInput(s, ev)
	}
}

// substates snapshots the substate chain, newest first. Dispatch walks the
// snapshot and skips entries a hook removed along the way.
func (s *State) substates() []*State {
	if s.substate == nil {
		return nil
	}
	var chain []*State
	for sub := s.substate; sub != nil; sub = sub.prev {
		chain = append(chain, sub)
	}
	return chain
}

// Pop removes the state wherever it is: the top of the stack, the middle
// of the stack or its parent's substate chain. A replacement is pushed in
// its slot.
func (s *State) Pop() {
	switch {
	case s.parent != nil:
		s.parent.removeSubstate(s)
	case s.game == nil:
		violate("pop", s, ErrNotActive)
	default:
		g := s.game
		g.checkUnlocked("pop", s)
		g.remove(s, true)
	}
}

// Replace swaps r into this state's slot. The state is popped without
// pushing its own replacement, and that replacement is cleared: r takes
// its place instead.
func (s *State) Replace(r *State) *State {
	if s.parent != nil {
		violate("replace", s, ErrIsSubstate)
	}
	g := s.game
	if g == nil {
		violate("replace", s, ErrNotActive)
	}
	g.checkUnlocked("replace", s)
	mustBeDetached("replace", r)

	prev, next := s.prev, s.next
	g.remove(s, false)
	g.link(r, prev, next)
	g.logger.Debug("replace", "old", s.Name, "new", r.Name)
	r.activate(g)
	return r
}

// PopUntil atomically pops states off the top until target is the top. If
// target is not at or below this state, the whole stack is popped.
// Replacements of the states unwound this way are discarded.
func (s *State) PopUntil(target *State) {
	g := s.mustGame("pop until")

	base := s
	for base.parent != nil {
		base = base.parent
	}
	found := false
	for t := base; t != nil && target != nil; t = t.prev {
		if t == target {
			found = true
			break
		}
	}

	g.Lock()
	for g.top != nil && (!found || g.top != target) {
		g.remove(g.top, false)
	}
	g.Unlock()
}

// PushSubstate attaches sub to this state's private substate chain. It
// becomes active with its parent.
func (s *State) PushSubstate(sub *State) *State {
	switch {
	case sub == nil:
		violate("push substate", s, ErrNilState)
	case sub.parent != nil:
		violate("push substate", sub, ErrHasParent)
	case sub.game != nil:
		violate("push substate", sub, ErrAlreadyActive)
	}

	sub.parent = s
	sub.prev = s.substate
	sub.next = nil
	if s.substate != nil {
		s.substate.next = sub
	}
	s.substate = sub
	if sub.surface == nil {
		sub.surface = s.surface
	}
	if sub.bounds.Empty() {
		sub.bounds = s.bounds
	}

	if g := s.Game(); g != nil && s.pushed {
		sub.activate(g)
	}
	return sub
}

// PopSubstate removes the newest substate.
func (s *State) PopSubstate() *State {
	sub := s.substate
	if sub == nil {
		violate("pop substate", s, ErrNoSubstate)
	}
	s.removeSubstate(sub)
	return sub
}

// FindBelow walks down from this state (inclusive) and returns the first
// state accepted by match.
func (s *State) FindBelow(match func(*State) bool) *State {
	for t := s; t != nil; t = t.prev {
		if match(t) {
			return t
		}
	}
	return nil
}

// Find walks down from s (inclusive) to the first state whose behavior is
// a T and returns both.
func Find[T any](s *State) (*State, T, bool) {
	for t := s; t != nil; t = t.prev {
		if b, ok := t.behavior.(T); ok {
			return t, b, true
		}
	}
	var zero T
	return nil, zero, false
}

func (s *State) removeSubstate(sub *State) {
	for sub.substate != nil {
		sub.removeSubstate(sub.substate)
	}
	if sub.pushed {
		sub.pushed = false
		sub.behavior.OnPop(sub)
	}

	if sub.prev != nil {
		sub.prev.next = sub.next
	}
	if sub.next != nil {
		sub.next.prev = sub.prev
	} else if s.substate == sub {
		s.substate = sub.prev
	}
	sub.prev, sub.next, sub.parent = nil, nil, nil
}

// activate stamps push time, activates substates and runs push hooks,
// substates first.
func (s *State) activate(g *Game) {
	s.pushTick = g.tickNum
	s.pushTime = g.tickTime
	s.duration = 0
	s.pretickAt = 0
	s.dispatchAt = 0
	for sub := s.substate; sub != nil; sub = sub.prev {
		sub.activate(g)
	}
	s.pushed = true
	s.behavior.OnPush(s)
}

// deactivate pops every substate, runs the pop hook and detaches the state.
func (s *State) deactivate() {
	for s.substate != nil {
		s.removeSubstate(s.substate)
	}
	if s.pushed {
		s.pushed = false
		s.behavior.OnPop(s)
	}
	s.game, s.prev, s.next = nil, nil, nil
}

// forwards reports whether dispatch continues to the state beneath.
// Substates never forward to their older siblings.
func (s *State) forwards() bool {
	return s.Passthrough && s.parent == nil && s.prev != nil
}

func (s *State) mustGame(op string) *Game {
	g := s.Game()
	if g == nil {
		violate(op, s, ErrNotActive)
	}
	return g
}

func mustBeDetached(op string, s *State) {
	switch {
	case s == nil:
		violate(op, nil, ErrNilState)
	case s.parent != nil:
		violate(op, s, ErrIsSubstate)
	case s.game != nil:
		violate(op, s, ErrAlreadyActive)
	}
}
