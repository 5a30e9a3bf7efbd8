// Package tui hosts the dungeon simulation in a terminal through Bubble
// Tea, locally or per SSH session. It owns frame pacing, key and mouse
// translation and rendering; the simulation itself runs on its own fixed
// tick inside engine.Game.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent once per presentation frame.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends a frame message at the
// specified rate.
func tickCmd(frameRate int) tea.Cmd {
	interval := time.Second / time.Duration(frameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
