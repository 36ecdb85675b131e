package models

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/VoidMesh/worldstream/cmd/debug/components"
)

// RegionsModel lists unlocked regions and edits the gate store.
type RegionsModel struct {
	client API

	unlocked []string
	cursor   int
	width    int
	height   int

	editing   bool
	input     string
	statusMsg string
	errorMsg  string
}

// NewRegionsModel creates a new region gate model
func NewRegionsModel(c API) RegionsModel {
	return RegionsModel{client: c}
}

// Init loads the unlocked list
func (m RegionsModel) Init() tea.Cmd {
	return m.loadCmd()
}

// Editing reports whether the region id prompt is open.
func (m RegionsModel) Editing() bool {
	return m.editing
}

// Update handles region gate messages
func (m RegionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateInput(msg.String())
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.unlocked)-1 {
				m.cursor++
			}
		case "n", "u":
			m.editing = true
			m.input = ""
		case "d", "delete":
			if len(m.unlocked) > 0 {
				return m, m.lockCmd(m.unlocked[m.cursor])
			}
		case "r":
			return m, m.loadCmd()
		}

	case regionsLoadedMsg:
		m.unlocked = msg.unlocked
		if m.cursor >= len(m.unlocked) {
			m.cursor = max(len(m.unlocked)-1, 0)
		}
		m.errorMsg = ""

	case regionChangedMsg:
		if msg.unlocked {
			m.statusMsg = fmt.Sprintf("Unlocked %q", msg.region)
		} else {
			m.statusMsg = fmt.Sprintf("Locked %q", msg.region)
		}
		return m, m.loadCmd()

	case regionErrorMsg:
		m.errorMsg = string(msg)
	}

	return m, nil
}

func (m RegionsModel) updateInput(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "ctrl+c":
		m.editing = false
		m.input = ""
	case "enter":
		region := strings.TrimSpace(m.input)
		m.editing = false
		m.input = ""
		if region != "" {
			return m, m.unlockCmd(region)
		}
	case "backspace":
		if m.input != "" {
			_, size := utf8.DecodeLastRuneInString(m.input)
			m.input = m.input[:len(m.input)-size]
		}
	case "space":
		m.input += " "
	default:
		if utf8.RuneCountInString(key) == 1 {
			m.input += key
		}
	}
	return m, nil
}

// View renders the region gate view
func (m RegionsModel) View() string {
	var s strings.Builder

	s.WriteString(components.TitleStyle.Render("Region Gates") + "\n\n")

	var rows []string
	if len(m.unlocked) == 0 {
		rows = append(rows, components.MenuItemStyle.Render("No regions unlocked"))
	}
	for i, id := range m.unlocked {
		style := components.MenuItemStyle
		if i == m.cursor {
			style = components.SelectedMenuItemStyle
		}
		rows = append(rows, style.Render(id))
	}
	s.WriteString(components.BorderStyle.Render(strings.Join(rows, "\n")) + "\n")

	if m.editing {
		s.WriteString(components.SubtitleStyle.Render("Unlock region") + "\n")
		s.WriteString(components.InputStyle.Render(m.input+"_") + "\n")
	}
	if m.statusMsg != "" {
		s.WriteString(components.MessageStyle.Render(m.statusMsg) + "\n")
	}
	if m.errorMsg != "" {
		s.WriteString(components.ErrorStyle.Render("Error: "+m.errorMsg) + "\n")
	}

	s.WriteString(components.HelpStyle.Render("n: Unlock a region • d: Relock selected • r: Refresh • q: Back") + "\n")
	s.WriteString(components.StatusBarStyle.Width(m.width).Render(fmt.Sprintf("Unlocked: %d", len(m.unlocked))))

	return s.String()
}

// SetSize updates the region gate view size
func (m *RegionsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m RegionsModel) loadCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := c.Regions(ctx)
		if err != nil {
			return regionErrorMsg(err.Error())
		}
		return regionsLoadedMsg{unlocked: resp.Unlocked}
	}
}

func (m RegionsModel) unlockCmd(region string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := c.UnlockRegion(ctx, region)
		if err != nil {
			return regionErrorMsg(err.Error())
		}
		return regionChangedMsg{region: resp.Region, unlocked: resp.Unlocked}
	}
}

func (m RegionsModel) lockCmd(region string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := c.LockRegion(ctx, region)
		if err != nil {
			return regionErrorMsg(err.Error())
		}
		return regionChangedMsg{region: resp.Region, unlocked: resp.Unlocked}
	}
}

type regionsLoadedMsg struct {
	unlocked []string
}

type regionChangedMsg struct {
	region   string
	unlocked bool
}

type regionErrorMsg string
