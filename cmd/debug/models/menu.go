package models

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/VoidMesh/worldstream/cmd/debug/components"
	"github.com/VoidMesh/worldstream/internal/api"
)

// MenuChoice represents a menu option
type MenuChoice struct {
	Title       string
	Description string
	Icon        string
	View        ViewType
}

// menuChoices is in menu order; an entry's number key is its position.
var menuChoices = []MenuChoice{
	{Title: "Stream Explorer", Description: "Chunk states around the viewer", Icon: "#", View: StreamExplorerView},
	{Title: "Region Gates", Description: "Unlock and relock gated regions", Icon: "+", View: RegionsView},
	{Title: "System Overview", Description: "Streaming and loader counters", Icon: "=", View: OverviewView},
}

// MenuModel lists the views and shows where the viewer currently stands.
type MenuModel struct {
	client  API
	choices []MenuChoice
	cursor  int
	width   int
	height  int

	viewer    *api.ViewerResponse
	statusErr string
}

func NewMenuModel(client API) MenuModel {
	return MenuModel{client: client, choices: menuChoices}
}

// Init fetches the viewer position for the status line.
func (m MenuModel) Init() tea.Cmd {
	return m.viewerCmd()
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case menuViewerMsg:
		m.viewer = &msg.viewer
		m.statusErr = ""
		return m, nil

	case menuViewerErrorMsg:
		m.statusErr = string(msg)
		return m, nil

	case tea.KeyMsg:
		switch k := msg.String(); k {
		case "up", "k":
			m.cursor = (m.cursor + len(m.choices) - 1) % len(m.choices)
		case "down", "j":
			m.cursor = (m.cursor + 1) % len(m.choices)
		case "r":
			return m, m.viewerCmd()
		case "enter", " ":
			return m, switchTo(m.choices[m.cursor].View)
		default:
			if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(m.choices) {
				m.cursor = n - 1
				return m, switchTo(m.choices[m.cursor].View)
			}
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	var s strings.Builder

	s.WriteString(components.TitleStyle.Render("Worldstream Debug Tool") + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	menuStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(components.PrimaryColor).
		Padding(1, 2).
		Width(60)

	items := make([]string, 0, len(m.choices))
	for i, choice := range m.choices {
		style := components.MenuItemStyle
		if i == m.cursor {
			style = components.SelectedMenuItemStyle
		}
		item := fmt.Sprintf("%-3s %-25s %s", fmt.Sprintf("%d.", i+1), choice.Icon+" "+choice.Title, choice.Description)
		items = append(items, style.Render(item))
	}
	s.WriteString(menuStyle.Render(strings.Join(items, "\n")) + "\n\n")

	s.WriteString(components.HelpStyle.Render(
		fmt.Sprintf("↑/↓ or j/k to navigate • Enter or 1-%d to select • r to refresh • ? for help • q to quit", len(m.choices)),
	))

	content := s.String()
	if m.width > 0 {
		if w := lipgloss.Width(content); w < m.width {
			content = lipgloss.NewStyle().PaddingLeft((m.width - w) / 2).Render(content)
		}
	}
	return content
}

func (m MenuModel) statusLine() string {
	switch {
	case m.statusErr != "":
		return components.ErrorStyle.Render("server unreachable: " + m.statusErr)
	case m.viewer == nil:
		return components.StatusBarStyle.Render("contacting server...")
	case !m.viewer.Placed:
		return components.StatusBarStyle.Render("viewer not placed")
	default:
		return components.StatusBarStyle.Render(fmt.Sprintf("viewer at (%d, %d) in %s",
			m.viewer.ChunkX, m.viewer.ChunkY, m.viewer.World))
	}
}

// SetSize updates the menu size
func (m *MenuModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m MenuModel) viewerCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		viewer, err := c.Viewer(ctx)
		if err != nil {
			return menuViewerErrorMsg(err.Error())
		}
		return menuViewerMsg{viewer: viewer}
	}
}

func switchTo(view ViewType) tea.Cmd {
	return func() tea.Msg { return NewSwitchViewMsg(view) }
}

type menuViewerMsg struct {
	viewer api.ViewerResponse
}

type menuViewerErrorMsg string
