package models

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/VoidMesh/worldstream/cmd/debug/components"
	"github.com/VoidMesh/worldstream/internal/api"
)

// OverviewModel handles the system overview view
type OverviewModel struct {
	client API
	width  int
	height int

	stats       *api.StatsResponse
	lastUpdated time.Time
	errorMsg    string
	generation  int
}

// NewOverviewModel creates a new overview model
func NewOverviewModel(c API) OverviewModel {
	return OverviewModel{client: c}
}

// Init initializes the overview
func (m OverviewModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tickCmd())
}

// Reset stops auto-refresh ticks still in flight.
func (m *OverviewModel) Reset() {
	m.generation++
}

// Update handles overview messages
func (m OverviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.loadCmd()
		}

	case statsLoadedMsg:
		m.stats = &msg.stats
		m.lastUpdated = time.Now()
		m.errorMsg = ""

	case statsErrorMsg:
		m.errorMsg = string(msg)

	case overviewTickMsg:
		if msg.generation == m.generation {
			return m, tea.Batch(m.loadCmd(), m.tickCmd())
		}
	}

	return m, nil
}

// View renders the overview
func (m OverviewModel) View() string {
	var s strings.Builder

	title := components.TitleStyle.Render("System Overview")
	s.WriteString(title + "\n\n")

	if m.stats == nil {
		msg := "Loading stats..."
		if m.errorMsg != "" {
			msg = "Error: " + m.errorMsg
		}
		s.WriteString(components.BorderStyle.Render(msg) + "\n\n")
	} else {
		s.WriteString(lipgloss.JoinHorizontal(
			lipgloss.Top,
			components.BorderStyle.Render(m.renderManager()),
			components.BorderStyle.Render(m.renderLoader()),
			components.BorderStyle.Render(m.renderTemplates()),
		) + "\n\n")
	}

	status := []string{"Press 'r' to refresh", "'q' to go back"}
	if !m.lastUpdated.IsZero() {
		status = append(status, "Updated: "+m.lastUpdated.Format("15:04:05"))
	}
	if m.errorMsg != "" && m.stats != nil {
		status = append(status, "Error: "+m.errorMsg)
	}
	s.WriteString(components.StatusBarStyle.Width(m.width).Render(strings.Join(status, " • ")))

	return s.String()
}

func (m OverviewModel) renderManager() string {
	st := m.stats.Manager
	var b strings.Builder
	b.WriteString(components.SubtitleStyle.Render("Streaming") + "\n")
	if st.Viewer != nil {
		b.WriteString(fmt.Sprintf("Viewer:    (%d, %d)\n", st.Viewer.X, st.Viewer.Y))
	} else {
		b.WriteString("Viewer:    not placed\n")
	}
	b.WriteString(fmt.Sprintf("Resident:  %d\n", st.Resident))
	b.WriteString(fmt.Sprintf("Attached:  %d\n", st.Attached))
	b.WriteString(fmt.Sprintf("In flight: %d\n", st.InFlight))
	b.WriteString(fmt.Sprintf("Moves:     %d (%d refused)\n", st.Moves, st.RefusedMoves))
	b.WriteString(fmt.Sprintf("Published: %d\n", st.Published))
	b.WriteString(fmt.Sprintf("Discarded: %d\n", st.Discarded))
	b.WriteString(fmt.Sprintf("Failed:    %d\n", st.FailedLoads))
	b.WriteString(fmt.Sprintf("Unloaded:  %d\n", st.Unloaded))
	b.WriteString(fmt.Sprintf("Softened:  %d\n", st.Softened))
	b.WriteString(fmt.Sprintf("Promoted:  %d\n", st.Promoted))
	for _, state := range slices.Sorted(maps.Keys(st.States)) {
		b.WriteString(fmt.Sprintf("  %-10s %d\n", state, st.States[state]))
	}
	return b.String()
}

func (m OverviewModel) renderLoader() string {
	st := m.stats.Loader
	var b strings.Builder
	b.WriteString(components.SubtitleStyle.Render("Loader") + "\n")
	b.WriteString(fmt.Sprintf("Admitted:  %d\n", st.Admitted))
	b.WriteString(fmt.Sprintf("Rejected:  %d\n", st.Rejected))
	b.WriteString(fmt.Sprintf("Loaded:    %d\n", st.Loaded))
	b.WriteString(fmt.Sprintf("Failed:    %d\n", st.Failed))
	b.WriteString(fmt.Sprintf("Timed out: %d\n", st.TimedOut))
	b.WriteString(fmt.Sprintf("Cancelled: %d\n", st.Cancelled))
	b.WriteString(fmt.Sprintf("Running:   %d (peak %d)\n", st.Running, st.Peak))
	b.WriteString(fmt.Sprintf("In flight: %d\n", st.InFlight))
	b.WriteString(fmt.Sprintf("Queued:    %d\n", st.Queued))
	return b.String()
}

func (m OverviewModel) renderTemplates() string {
	var b strings.Builder
	b.WriteString(components.SubtitleStyle.Render("Templates") + "\n")
	if len(m.stats.Templates) == 0 {
		b.WriteString("none cached\n")
	}
	for _, name := range m.stats.Templates {
		b.WriteString(name + "\n")
	}
	return b.String()
}

// SetSize updates the overview size
func (m *OverviewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m OverviewModel) loadCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		stats, err := c.Stats(ctx)
		if err != nil {
			return statsErrorMsg(err.Error())
		}
		return statsLoadedMsg{stats: stats}
	}
}

func (m OverviewModel) tickCmd() tea.Cmd {
	generation := m.generation
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return overviewTickMsg{generation: generation}
	})
}

type statsLoadedMsg struct {
	stats api.StatsResponse
}

type statsErrorMsg string

type overviewTickMsg struct {
	generation int
}
