package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/netsnake/internal/client"
	"github.com/vovakirdan/netsnake/internal/core"
	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/protocol"
	"github.com/vovakirdan/netsnake/internal/storage"
)

// SessionFactory starts a new session and the move client that drives it.
type SessionFactory func(name string, mode netsim.Mode) (*client.MoveClient, error)

// MoveDoneMsg carries the outcome of a move request back to the UI loop.
type MoveDoneMsg struct {
	Gen     int
	Outcome client.Outcome
}

// GameModel is the Bubble Tea model of one game screen. A restart swaps in
// a fresh session from the factory.
type GameModel struct {
	client  *client.MoveClient
	factory SessionFactory
	store   *storage.Store
	step    time.Duration
	gen     int

	screen *core.Screen
	keys   GameKeyMap
	help   help.Model
	width  int
	height int

	last     *client.Outcome
	saved    bool
	saveNote string
	err      error

	quitting   bool
	backToMenu bool
}

// NewGameModel creates a game screen for mc. store may be nil.
func NewGameModel(mc *client.MoveClient, factory SessionFactory, store *storage.Store, step time.Duration) GameModel {
	grid := mc.Session().Snapshot().GridSize
	w, h := netsnake.BoardSize(grid)
	return GameModel{
		client:  mc,
		factory: factory,
		store:   store,
		step:    step,
		screen:  core.NewScreen(w, h),
		keys:    DefaultGameKeyMap(),
		help:    help.New(),
	}
}

// Init starts the automatic step loop.
func (m GameModel) Init() tea.Cmd {
	return stepCmd(m.step, m.gen)
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case StepMsg:
		return m.handleStep(msg)

	case MoveDoneMsg:
		return m.handleMoveDone(msg)
	}
	return m, nil
}

func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.close()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.close()
		m.backToMenu = true
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		if m.client.Session().Over() {
			return m.restart()
		}
		return m, nil
	}

	if dir, ok := m.keys.Direction(msg); ok && !m.client.Session().Over() {
		return m, m.moveCmd(dir)
	}
	return m, nil
}

// handleStep replays the desired direction. The loop stops once the
// session is over and is restarted by a new game.
func (m GameModel) handleStep(msg StepMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}
	snap := m.client.Session().Snapshot()
	if snap.Over() {
		return m, nil
	}
	if snap.Busy() {
		return m, stepCmd(m.step, m.gen)
	}
	return m, tea.Batch(m.moveCmd(snap.Desired), stepCmd(m.step, m.gen))
}

func (m GameModel) handleMoveDone(msg MoveDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}
	if msg.Outcome.Kind != client.OutcomeSkipped {
		out := msg.Outcome
		m.last = &out
	}

	if m.client.Session().Over() && !m.saved {
		m.saved = true
		m.saveNote = m.saveResult()
	}
	return m, nil
}

func (m GameModel) saveResult() string {
	if m.store == nil {
		return ""
	}
	if _, err := m.store.SaveResult(m.client.Session().Result()); err != nil {
		return "could not save result: " + err.Error()
	}
	return "result saved to the leaderboard"
}

func (m GameModel) restart() (tea.Model, tea.Cmd) {
	session := m.client.Session()
	next, err := m.factory(session.Name(), session.Mode())
	if err != nil {
		m.err = err
		return m, nil
	}
	m.close()

	m.client = next
	m.gen++
	m.last = nil
	m.saved = false
	m.saveNote = ""
	m.err = nil
	return m, stepCmd(m.step, m.gen)
}

func (m GameModel) moveCmd(dir protocol.Direction) tea.Cmd {
	mc, gen := m.client, m.gen
	return func() tea.Msg {
		return MoveDoneMsg{Gen: gen, Outcome: mc.RequestMove(context.Background(), dir)}
	}
}

func (m GameModel) close() {
	//nolint:errcheck // Best-effort close on the way out
	m.client.Close()
}

// View renders the board, the HUD and, after game over, the summary.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	session := m.client.Session()
	snap := session.Snapshot()
	snap.Render(m.screen)
	drawHeadLatency(m.screen, snap)

	board := RenderScreen(m.screen)
	hud := renderHUD(session.Name(), string(session.Mode()), snap, m.last)

	var body string
	if m.width > 0 && m.width < lipgloss.Width(board)+lipgloss.Width(hud)+2 {
		body = lipgloss.JoinVertical(lipgloss.Left, board, hud)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", hud)
	}

	parts := []string{body}
	if snap.Over() {
		parts = append(parts, renderSummary(session.Result(), m.saveNote))
	}
	if m.err != nil {
		parts = append(parts, alertStyle.Render(m.err.Error()))
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// Client returns the move client of the current session.
func (m GameModel) Client() *client.MoveClient {
	return m.client
}
