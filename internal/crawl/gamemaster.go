package crawl

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-dungeon/internal/config"
	"github.com/vovakirdan/tui-dungeon/internal/engine"
)

// Gamemaster runs one play-through: it stacks a level, waits for the level
// to end and either starts the next one or ends the run.
//
// It only acts while it is the top state, so everything a level pushes
// (HUD, banners, overlays) settles before the next decision.
type Gamemaster struct {
	engine.Base

	sess *Session
	char config.Character

	number  int
	level   *Level
	kills   int
	coins   int
	elapsed time.Duration
}

// NewGamemaster creates a gamemaster for a run with ch as the player.
func NewGamemaster(sess *Session, ch config.Character) *engine.State {
	return engine.NewState("gamemaster", &Gamemaster{sess: sess, char: ch, number: 1})
}

// Number returns the current level number.
func (gm *Gamemaster) Number() int { return gm.number }

// Level returns the level in play, or nil between levels.
func (gm *Gamemaster) Level() *Level { return gm.level }

// OnTick starts levels and reacts to their results.
func (gm *Gamemaster) OnTick(s *engine.State, tick uint64) {
	if s.Next() != nil {
		return
	}

	if gm.level == nil {
		gm.startLevel(s)
		return
	}

	lv := gm.level
	gm.kills += lv.Kills()
	gm.coins += lv.Hero().Coins
	gm.elapsed += lv.Elapsed(s.Game().TickDuration())
	gm.level = nil

	switch lv.Result() {
	case ResultWin:
		gm.sess.Logger.Debug("level cleared", "level", gm.number, "kills", lv.Kills())
		gm.number++
		gm.startLevel(s)
	case ResultDeath:
		gm.finish(s, ResultDeath)
	default:
		gm.finish(s, ResultQuit)
	}
}

func (gm *Gamemaster) startLevel(s *engine.State) {
	g := s.Game()
	lv, err := NewLevel(gm.sess, gm.number, gm.char)
	if err != nil {
		gm.sess.Logger.Error("level generation failed", "level", gm.number, "err", err)
		gm.finish(s, ResultQuit)
		return
	}

	pacing := gm.sess.Pacing()
	cfg := gm.sess.Config.Gamemaster
	ls := engine.NewState(fmt.Sprintf("level-%d", gm.number), lv)
	ls.PushSubstate(NewSpawner(lv, pacing.SpawnInterval(cfg.BaseSpawnInterval, gm.number)))
	for range pacing.ExtraSpawners(gm.number) {
		ls.PushSubstate(NewSpawner(lv, pacing.SpawnInterval(cfg.ExtraSpawnInterval, gm.number)))
	}

	g.Push(ls)
	g.Push(NewHUD(lv))
	g.Enqueue(NewBanner(fmt.Sprintf("Level %d", gm.number), cfg.AnnouncementTicks, cfg.FreezeTicks))
	gm.level = lv
}

// finish reports the run and leaves a summary screen in the gamemaster's
// slot.
func (gm *Gamemaster) finish(s *engine.State, result Result) {
	sum := RunSummary{
		Character: gm.char.ID,
		Level:     gm.number,
		Kills:     gm.kills,
		Coins:     gm.coins,
		Result:    result,
		Duration:  gm.elapsed,
		Seed:      gm.sess.Seed,
	}
	gm.sess.reportRun(sum)
	s.SetReplacement(NewSummary(gm.sess, sum))
	s.Pop()
}
