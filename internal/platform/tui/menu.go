package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/netsnake/internal/games/netsnake"
	"github.com/vovakirdan/netsnake/internal/netsim"
)

const maxNameLength = 24

// MenuItem is one selectable network mode.
type MenuItem struct {
	Mode        netsim.Mode
	Description string
}

// MenuModel is the Bubble Tea model for the start screen: player name and
// network mode.
type MenuModel struct {
	items     []MenuItem
	cursor    int
	name      textinput.Model
	width     int
	height    int
	keyMapper *KeyMapper
	errMsg    string

	quitting       bool
	selected       *MenuItem
	openScoreboard bool
}

// NewMenuModel creates a menu listing every mode with its profile.
func NewMenuModel(profiles netsim.Profiles, name string, width, height int) MenuModel {
	items := make([]MenuItem, 0, len(netsim.Modes))
	for _, mode := range netsim.Modes {
		items = append(items, MenuItem{Mode: mode, Description: describeMode(mode, profiles)})
	}

	ti := textinput.New()
	ti.Placeholder = netsnake.DefaultPlayerName
	ti.CharLimit = maxNameLength
	ti.Width = maxNameLength
	ti.SetValue(name)
	ti.Focus()

	return MenuModel{
		items:     items,
		name:      ti,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
}

func describeMode(mode netsim.Mode, profiles netsim.Profiles) string {
	if mode == netsim.ModeSolo {
		return "no network, moves apply instantly"
	}
	p := profiles.For(mode)
	return fmt.Sprintf("±%d ms jitter, %.0f%% loss", p.JitterAmplitudeMs, p.LossRate*100)
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case MenuActionSelect:
		selected := m.items[m.cursor]
		m.selected = &selected
		return m, nil

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, nil
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("N E T S N A K E"), m.width))
	b.WriteString("\n")
	b.WriteString(centerText(dimStyle.Render("snake over a bad connection"), m.width))
	b.WriteString("\n\n")

	b.WriteString(centerText("Name: "+m.name.View(), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := fmt.Sprintf("  %-7s %s", item.Mode, dimStyle.Render(item.Description))
		if i == m.cursor {
			line = cursorStyle.Render("> "+string(item.Mode)) + strings.Repeat(" ", 8-len(item.Mode)) + dimStyle.Render(item.Description)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(centerText(alertStyle.Render(m.errMsg), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Mode  |  Enter: Play  |  Tab: Scores  |  Esc: Quit"
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// SetError shows msg under the mode list and clears the selection.
func (m *MenuModel) SetError(msg string) {
	m.errMsg = msg
	m.selected = nil
}

// PlayerName returns the entered name, or the default one.
func (m MenuModel) PlayerName() string {
	name := strings.TrimSpace(m.name.Value())
	if name == "" {
		return netsnake.DefaultPlayerName
	}
	return name
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested scoreboard.
func (m MenuModel) WantsScoreboard() bool {
	return m.openScoreboard
}
