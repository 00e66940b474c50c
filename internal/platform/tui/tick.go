// Package tui provides the Bubble Tea terminal client for NetSnake: the
// menu, the game screen, the scoreboard and SSH serving.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StepMsg triggers an automatic step in the desired direction.
type StepMsg struct {
	Gen  int // Session generation; steps from an older session are ignored
	Time time.Time
}

// stepCmd schedules the next automatic step for session generation gen.
func stepCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return StepMsg{Gen: gen, Time: t}
	})
}
