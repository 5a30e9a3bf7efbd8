package engine

import (
	"time"

	"github.com/vovakirdan/tui-dungeon/internal/core"
)

// Behavior is the mode-specific logic of a State. Every hook receives the
// state it is attached to, which gives access to the game, the states
// around it and its surface.
type Behavior interface {
	// OnPush runs when the state becomes active.
	OnPush(s *State)
	// OnPop runs when the state is removed, before it is detached.
	OnPop(s *State)
	// OnPretick runs once per tick on every stacked state before dispatch.
	OnPretick(s *State, tick uint64)
	// OnTick runs for the active state (and what it forwards to).
	OnTick(s *State, tick uint64)
	// OnDraw paints the state onto its surface.
	OnDraw(s *State, tick uint64, now time.Duration)
	// OnInput handles a discrete input event.
	OnInput(s *State, ev core.Event)
}

// Base implements every Behavior hook as a no-op. Embed it and override the
// hooks a mode needs.
type Base struct{}

func (Base) OnPush(*State) {}
func (Base) OnPop(*State) {}
func (Base) OnPretick(*State, uint64) {}
func (Base) OnTick(*State, uint64) {}
func (Base) OnDraw(*State, uint64, time.Duration) {}
func (Base) OnInput(*State, core.Event) {}

// Hooks adapts plain functions to a Behavior. Nil fields are no-ops.
type Hooks struct {
	Push    func(s *State)
	Pop     func(s *State)
	Pretick func(s *State, tick uint64)
	Tick    func(s *State, tick uint64)
	Draw    func(s *State, tick uint64, now time.Duration)
	Input   func(s *State, ev core.Event)
}

func (h Hooks) OnPush(s *State) {
	if h.Push != nil {
		h.Push(s)
	}
}

func (h Hooks) OnPop(s *State) {
	if h.Pop != nil {
		h.Pop(s)
	}
}

func (h Hooks) OnPretick(s *State, tick uint64) {
	if h.Pretick != nil {
		h.Pretick(s, tick)
	}
}

func (h Hooks) OnTick(s *State, tick uint64) {
	if h.Tick != nil {
		h.Tick(s, tick)
	}
}

func (h Hooks) OnDraw(s *State, tick uint64, now time.Duration) {
	if h.Draw != nil {
		h.Draw(s, tick, now)
	}
}

func (h Hooks) OnInput(s *State, ev core.Event) {
	if h.Input != nil {
		h.Input(s, ev)
	}
}
