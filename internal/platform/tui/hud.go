package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/netsnake/internal/client"
	"github.com/vovakirdan/netsnake/internal/core"
	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/stats"
)

// barScaleMs is the latency that fills the whole bar.
const barScaleMs = 500

const barWidth = 20

var (
	hudTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	hudLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(9)
	hudPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	alertStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 2)
)

// bandColors maps latency bands to terminal colors.
var bandColors = map[stats.Band]lipgloss.Color{
	stats.BandNone: lipgloss.Color("245"),
	stats.BandLow:  lipgloss.Color("2"),
	stats.BandMid:  lipgloss.Color("3"),
	stats.BandHigh: lipgloss.Color("1"),
}

// bandCoreColors is the same mapping for the cell buffer.
var bandCoreColors = map[stats.Band]core.Color{
	stats.BandNone: core.ColorGray,
	stats.BandLow:  core.ColorGreen,
	stats.BandMid:  core.ColorYellow,
	stats.BandHigh: core.ColorRed,
}

func bandOf(sum stats.Summary) stats.Band {
	if !sum.HasLast {
		return stats.BandNone
	}
	return stats.BandFor(sum.LastMs)
}

// formatMs renders an optional millisecond value, with a dash when unset.
func formatMs(v int, ok bool) string {
	if !ok {
		return "— ms"
	}
	return fmt.Sprintf("%d ms", v)
}

// latencyBar renders ms as a bar of width cells scaled to barScaleMs.
func latencyBar(ms int, ok bool, width int) string {
	filled := 0
	if ok {
		filled = stats.Round(core.ClampF(float64(ms)/barScaleMs, 0, 1) * float64(width))
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// drawHeadLatency writes the last latency just right of the snake head,
// when it fits inside the board.
func drawHeadLatency(screen *core.Screen, snap netsnake.Snapshot) {
	if !snap.Stats.HasLast || len(snap.Snake) == 0 {
		return
	}
	label := fmt.Sprintf("%dms", snap.Stats.LastMs)
	head := snap.Snake[0]
	x := 1 + (head.X+1)*netsnake.CellWidth
	y := 1 + head.Y
	if x+len(label) > screen.Width()-1 {
		return
	}
	screen.DrawText(x, y, label, bandCoreColors[bandOf(snap.Stats)])
}

func hudLine(label, value string) string {
	return hudLabelStyle.Render(label) + value
}

// renderHUD renders the side panel with the network statistics.
func renderHUD(name string, mode string, snap netsnake.Snapshot, last *client.Outcome) string {
	band := bandOf(snap.Stats)
	bandStyle := lipgloss.NewStyle().Foreground(bandColors[band])

	lines := []string{
		hudTitleStyle.Render("N E T S N A K E"),
		"",
		hudLine("Player", name),
		hudLine("Mode", mode),
		hudLine("Score", fmt.Sprintf("%d", snap.Score)),
		"",
		hudLine("Latency", bandStyle.Bold(true).Render(formatMs(snap.Stats.LastMs, snap.Stats.HasLast))),
		bandStyle.Render(latencyBar(snap.Stats.LastMs, snap.Stats.HasLast, barWidth)),
		hudLine("Average", formatMs(snap.Stats.AvgMs, snap.Stats.HasAvg)),
		hudLine("Jitter", formatMs(snap.Stats.JitterMs, snap.Stats.HasJitter)),
		hudLine("Loss", fmt.Sprintf("%d %%", snap.Stats.LossPct)),
		"",
		hudLine("Seq", fmt.Sprintf("%d", snap.Seq)),
		hudLine("Link", phaseLabel(snap.Phase)),
	}
	if last != nil {
		lines = append(lines, hudLine("Last", outcomeLabel(*last)))
	}
	if snap.Alerting {
		lines = append(lines, "", alertStyle.Render("⚠ packet lost"))
	}
	return hudPanelStyle.Render(strings.Join(lines, "\n"))
}

func phaseLabel(p netsnake.Phase) string {
	switch p {
	case netsnake.PhaseAwaiting:
		return "waiting…"
	case netsnake.PhaseCooldown:
		return "stutter"
	case netsnake.PhaseOver:
		return "closed"
	default:
		return "ready"
	}
}

func outcomeLabel(o client.Outcome) string {
	switch o.Kind {
	case client.OutcomeApplied:
		return fmt.Sprintf("ok (%d ms)", o.RTT.Milliseconds())
	case client.OutcomeSimulatedLoss:
		return fmt.Sprintf("lost (%d ms)", o.RTT.Milliseconds())
	default:
		return o.Kind.String()
	}
}

// renderSummary renders the game-over panel.
func renderSummary(r netsnake.Result, saveNote string) string {
	lines := []string{
		alertStyle.Render("GAME OVER"),
		"",
		hudLine("Player", r.Name),
		hudLine("Mode", string(r.Mode)),
		hudLine("Score", fmt.Sprintf("%d", r.Score)),
		hudLine("Average", fmt.Sprintf("%d ms", r.AvgMs)),
		hudLine("Jitter", fmt.Sprintf("%d ms", r.JitterMs)),
		hudLine("Loss", fmt.Sprintf("%d %%", r.LossPct)),
		hudLine("Reason", string(r.Reason)),
	}
	if saveNote != "" {
		lines = append(lines, "", saveNote)
	}
	lines = append(lines, "", "r: new game  •  esc: menu  •  q: quit")
	return summaryStyle.Render(strings.Join(lines, "\n"))
}
