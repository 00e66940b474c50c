package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/netsnake/internal/client"
	"github.com/vovakirdan/netsnake/internal/config"
	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
	"github.com/vovakirdan/netsnake/internal/storage"
)

// AppOptions configures a terminal client session.
type AppOptions struct {
	Store    *storage.Store // Optional
	Profiles netsim.Profiles
	Client   config.ClientConfig
	Game     config.GameConfig
	Seed     int64
	Name     string      // Prefilled player name
	Mode     netsim.Mode // Skips the menu when set
	Logger   *log.Logger
	Width    int
	Height   int
}

// NewSessionFactory returns a factory that creates sessions with the given
// settings and connects them to the configured server.
func NewSessionFactory(cc config.ClientConfig, game config.GameConfig, seed int64, logger *log.Logger) SessionFactory {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return func(name string, mode netsim.Mode) (*client.MoveClient, error) {
		session := netsnake.NewSession(netsnake.Options{
			Name:  name,
			Mode:  mode,
			Seed:  seed,
			Game:  game,
			Alert: cc.Alert(),
		})

		var tr client.Transport
		if mode != netsim.ModeSolo {
			ctx, cancel := context.WithTimeout(context.Background(), cc.Timeout())
			defer cancel()
			var err error
			tr, err = client.Dial(ctx, cc.Transport, cc.ServerURL, session.ID())
			if err != nil {
				return nil, err
			}
		}

		logger.Debug("session started", "session", session.ID(), "name", name, "mode", mode, "transport", cc.Transport)
		return client.New(session, tr, client.Options{
			Timeout: cc.Timeout(),
			Stutter: cc.Stutter(),
			Logger:  logger,
		}), nil
	}
}

type appScreen int

const (
	screenMenu appScreen = iota
	screenGame
	screenScoreboard
)

// AppModel manages the client flow: menu -> game -> menu, with the
// scoreboard reachable from the menu. It is the top-level model both for
// local play and for SSH sessions.
type AppModel struct {
	opts    AppOptions
	factory SessionFactory
	screen  appScreen
	menu    MenuModel
	game    *GameModel
	board   ScoreboardModel
	width   int
	height  int
}

// NewAppModel creates the app. When opts.Mode is set the game starts right
// away; a failure to connect falls back to the menu with the error shown.
func NewAppModel(opts AppOptions, factory SessionFactory) AppModel {
	if factory == nil {
		factory = NewSessionFactory(opts.Client, opts.Game, opts.Seed, opts.Logger)
	}
	m := AppModel{
		opts:    opts,
		factory: factory,
		menu:    NewMenuModel(opts.Profiles, opts.Name, opts.Width, opts.Height),
		width:   opts.Width,
		height:  opts.Height,
	}

	if opts.Mode != "" {
		name := opts.Name
		if name == "" {
			name = netsnake.DefaultPlayerName
		}
		if err := m.startGame(name, opts.Mode); err != nil {
			m.menu.SetError(err.Error())
		}
	}
	return m
}

func (m *AppModel) startGame(name string, mode netsim.Mode) error {
	mc, err := m.factory(name, mode)
	if err != nil {
		return err
	}
	game := NewGameModel(mc, m.factory, m.opts.Store, m.opts.Client.Step())
	game.width, game.height = m.width, m.height
	game.help.Width = m.width
	m.game = &game
	m.screen = screenGame
	return nil
}

func (m *AppModel) showMenu(name string) tea.Cmd {
	m.menu = NewMenuModel(m.opts.Profiles, name, m.width, m.height)
	m.game = nil
	m.screen = screenMenu
	return m.menu.Init()
}

// Init initializes the current screen.
func (m AppModel) Init() tea.Cmd {
	if m.screen == screenGame && m.game != nil {
		return m.game.Init()
	}
	return m.menu.Init()
}

// Update handles messages for the current screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenScoreboard:
		return m.updateScoreboard(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.board = NewScoreboardModel(m.opts.Store, m.width, m.height)
		m.screen = screenScoreboard
		return m, m.board.Init()

	case m.menu.Selected() != nil:
		if err := m.startGame(m.menu.PlayerName(), m.menu.Selected().Mode); err != nil {
			m.menu.SetError(err.Error())
			return m, nil
		}
		return m, m.game.Init()
	}

	return m, cmd
}

func (m AppModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}

	if m.game.IsQuitting() {
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m, m.showMenu(m.game.Client().Session().Name())
	}
	return m, cmd
}

func (m AppModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	newBoard, cmd := m.board.Update(msg)
	if board, ok := newBoard.(ScoreboardModel); ok {
		m.board = board
	}

	if m.board.IsQuitting() {
		return m, tea.Quit
	}
	if m.board.IsGoingBack() {
		return m, m.showMenu(m.menu.PlayerName())
	}
	return m, cmd
}

// View renders the current screen.
func (m AppModel) View() string {
	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenScoreboard:
		return m.board.View()
	default:
		return m.menu.View()
	}
}

// Run starts the terminal client and blocks until the user quits.
func Run(opts AppOptions) error {
	p := tea.NewProgram(
		NewAppModel(opts, nil),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if app, ok := final.(AppModel); ok && app.game != nil {
		//nolint:errcheck // Best-effort close on exit
		app.game.Client().Close()
	}
	return err
}
