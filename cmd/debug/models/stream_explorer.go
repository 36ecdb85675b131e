package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/VoidMesh/worldstream/cmd/debug/client"
	"github.com/VoidMesh/worldstream/cmd/debug/components"
	"github.com/VoidMesh/worldstream/internal/api"
)

const (
	// gridRadius is how many chunks are drawn either side of the cursor.
	gridRadius      = 5
	refreshInterval = 2 * time.Second
	requestTimeout  = 5 * time.Second
)

type chunkPos struct{ X, Y int }

// StreamExplorerModel draws the resident chunk set as a grid and moves the
// viewer through the server.
type StreamExplorerModel struct {
	client API

	cursorX int
	cursorY int
	width   int
	height  int

	// Data
	viewer      api.ViewerResponse
	chunks      map[chunkPos]api.ChunkSummary
	detail      *api.ChunkDetail
	lastUpdated time.Time
	errorMsg    string
	statusMsg   string

	// UI state
	autoRefresh bool
	showInfo    bool
	// generation invalidates ticks scheduled before the last Reset.
	generation int
}

// NewStreamExplorerModel creates a new stream explorer model
func NewStreamExplorerModel(c API) StreamExplorerModel {
	return StreamExplorerModel{
		client:      c,
		chunks:      make(map[chunkPos]api.ChunkSummary),
		autoRefresh: true,
		showInfo:    true,
	}
}

// Init initializes the stream explorer
func (m StreamExplorerModel) Init() tea.Cmd {
	return tea.Batch(
		m.refreshCmd(),
		m.tickCmd(),
	)
}

// Reset stops auto-refresh ticks still in flight and clears messages.
func (m *StreamExplorerModel) Reset() {
	m.generation++
	m.statusMsg = ""
	m.errorMsg = ""
}

// Update handles stream explorer messages
func (m StreamExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		// Cursor movement
		case "up", "k":
			m.cursorY--
			return m, m.detailCmd()
		case "down", "j":
			m.cursorY++
			return m, m.detailCmd()
		case "left", "h":
			m.cursorX--
			return m, m.detailCmd()
		case "right", "l":
			m.cursorX++
			return m, m.detailCmd()

		// Actions
		case "enter", " ":
			return m, m.moveViewerCmd(m.cursorX, m.cursorY)

		case "c":
			if m.viewer.Placed {
				m.cursorX, m.cursorY = m.viewer.ChunkX, m.viewer.ChunkY
				return m, m.detailCmd()
			}

		case "r":
			return m, m.refreshCmd()

		case "a":
			m.autoRefresh = !m.autoRefresh
			if m.autoRefresh {
				return m, m.tickCmd()
			}

		case "i":
			m.showInfo = !m.showInfo
		}

	case streamSnapshotMsg:
		m.viewer = msg.viewer
		m.chunks = make(map[chunkPos]api.ChunkSummary, len(msg.chunks))
		for _, c := range msg.chunks {
			m.chunks[chunkPos{c.ChunkX, c.ChunkY}] = c
		}
		m.lastUpdated = time.Now()
		m.errorMsg = ""
		return m, m.detailCmd()

	case chunkDetailMsg:
		if msg.x == m.cursorX && msg.y == m.cursorY {
			m.detail = msg.detail
		}

	case viewerMovedMsg:
		m.viewer = msg.resp.Viewer
		if msg.resp.Moved {
			m.statusMsg = fmt.Sprintf("Viewer moved to (%d, %d) in %s", m.viewer.ChunkX, m.viewer.ChunkY, m.viewer.World)
		} else {
			m.statusMsg = "Viewer already in that chunk"
		}
		return m, m.refreshCmd()

	case streamErrorMsg:
		m.errorMsg = string(msg)

	case streamTickMsg:
		if m.autoRefresh && msg.generation == m.generation {
			return m, tea.Batch(
				m.refreshCmd(),
				m.tickCmd(),
			)
		}
	}

	return m, nil
}

// View renders the stream explorer
func (m StreamExplorerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	title := components.TitleStyle.Render(fmt.Sprintf("Stream Explorer - cursor (%d, %d)", m.cursorX, m.cursorY))
	s.WriteString(title + "\n")

	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderGrid(),
		m.renderInfoPanel(),
	)
	s.WriteString(mainContent + "\n")

	if m.statusMsg != "" {
		s.WriteString(components.MessageStyle.Render(m.statusMsg) + "\n")
	}

	s.WriteString(m.renderStatusBar())

	return s.String()
}

// renderGrid renders the chunk grid centred on the cursor
func (m StreamExplorerModel) renderGrid() string {
	var gridRows []string
	for y := m.cursorY - gridRadius; y <= m.cursorY+gridRadius; y++ {
		var row []string
		for x := m.cursorX - gridRadius; x <= m.cursorX+gridRadius; x++ {
			cellContent := components.EmptySymbol
			cellStyle := components.GridCellStyle.Foreground(components.Gray)

			if c, ok := m.chunks[chunkPos{x, y}]; ok {
				cellContent = components.StateSymbol(c.State)
				cellStyle = components.GridCellStyle.Foreground(components.StateColor(c.State))
				if c.Attached {
					cellStyle = cellStyle.Bold(true)
				}
			}

			if m.viewer.Placed && x == m.viewer.ChunkX && y == m.viewer.ChunkY {
				cellContent = components.ViewerSymbol
			}

			if x == m.cursorX && y == m.cursorY {
				cellStyle = components.GridSelectedCellStyle
			}

			row = append(row, cellStyle.Render(cellContent))
		}
		gridRows = append(gridRows, strings.Join(row, ""))
	}

	side := 2*gridRadius + 1
	return components.BorderStyle.
		Width(side*3 + 2).
		Height(side + 2).
		Render(strings.Join(gridRows, "\n"))
}

// renderInfoPanel renders the information panel
func (m StreamExplorerModel) renderInfoPanel() string {
	if !m.showInfo {
		return ""
	}

	var info strings.Builder

	info.WriteString(components.SubtitleStyle.Render("Viewer") + "\n")
	if m.viewer.Placed {
		info.WriteString(fmt.Sprintf("Chunk: (%d, %d)\n", m.viewer.ChunkX, m.viewer.ChunkY))
		info.WriteString(fmt.Sprintf("World: %s\n\n", m.viewer.World))
	} else {
		info.WriteString("Not placed yet\n\n")
	}

	info.WriteString(components.SubtitleStyle.Render("Chunk Under Cursor") + "\n")
	if c, ok := m.chunks[chunkPos{m.cursorX, m.cursorY}]; ok {
		info.WriteString(fmt.Sprintf("State: %s\n", c.State))
		info.WriteString(fmt.Sprintf("World: %s\n", c.World))
		info.WriteString(fmt.Sprintf("Attached: %v\n", c.Attached))
	} else {
		info.WriteString("Not resident\n")
	}
	if m.detail != nil {
		info.WriteString(fmt.Sprintf("Size: %dx%d, %d layers\n", m.detail.Width, m.detail.Height, m.detail.Layers))
		for _, row := range m.detail.Passability {
			info.WriteString(row + "\n")
		}
	}

	info.WriteString("\n" + components.SubtitleStyle.Render("Legend") + "\n")
	info.WriteString(fmt.Sprintf("%s Loaded   %s Loading\n", components.LoadedSymbol, components.LoadingSymbol))
	info.WriteString(fmt.Sprintf("%s Cached   %s Unloading\n", components.CachedSymbol, components.UnloadingSymbol))
	info.WriteString(fmt.Sprintf("%s Viewer   # Blocked tile\n", components.ViewerSymbol))

	info.WriteString("\n" + components.SubtitleStyle.Render("Controls") + "\n")
	info.WriteString("Arrow keys: Move cursor\n")
	info.WriteString("Enter: Move viewer here\n")
	info.WriteString("c: Cursor to viewer\n")
	info.WriteString("r: Refresh  a: Auto-refresh\n")
	info.WriteString("i: Toggle info  q: Back\n")

	return components.InfoPanelStyle.Render(info.String())
}

// renderStatusBar renders the status bar
func (m StreamExplorerModel) renderStatusBar() string {
	var status []string

	status = append(status, fmt.Sprintf("Resident: %d", len(m.chunks)))

	if m.autoRefresh {
		status = append(status, "Auto-refresh: ON")
	} else {
		status = append(status, "Auto-refresh: OFF")
	}

	if !m.lastUpdated.IsZero() {
		status = append(status, fmt.Sprintf("Updated: %s", m.lastUpdated.Format("15:04:05")))
	}

	if m.errorMsg != "" {
		status = append(status, fmt.Sprintf("Error: %s", m.errorMsg))
	}

	statusText := strings.Join(status, " • ")
	return components.StatusBarStyle.Width(m.width).Render(statusText)
}

// SetSize updates the stream explorer size
func (m *StreamExplorerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m StreamExplorerModel) refreshCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		viewer, err := c.Viewer(ctx)
		if err != nil {
			return streamErrorMsg(err.Error())
		}
		list, err := c.Chunks(ctx)
		if err != nil {
			return streamErrorMsg(err.Error())
		}
		return streamSnapshotMsg{viewer: viewer, chunks: list.Chunks}
	}
}

func (m StreamExplorerModel) detailCmd() tea.Cmd {
	c, x, y := m.client, m.cursorX, m.cursorY
	if _, ok := m.chunks[chunkPos{x, y}]; !ok {
		return func() tea.Msg { return chunkDetailMsg{x: x, y: y} }
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		detail, err := c.Chunk(ctx, x, y)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return chunkDetailMsg{x: x, y: y}
		}
		if err != nil {
			return streamErrorMsg(err.Error())
		}
		return chunkDetailMsg{x: x, y: y, detail: &detail}
	}
}

func (m StreamExplorerModel) moveViewerCmd(x, y int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := c.MoveViewer(ctx, x, y)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusLocked {
			return streamErrorMsg(fmt.Sprintf("chunk (%d, %d) is in a locked region", x, y))
		}
		if err != nil {
			return streamErrorMsg(err.Error())
		}
		return viewerMovedMsg{resp: resp}
	}
}

func (m StreamExplorerModel) tickCmd() tea.Cmd {
	generation := m.generation
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return streamTickMsg{generation: generation}
	})
}

type streamSnapshotMsg struct {
	viewer api.ViewerResponse
	chunks []api.ChunkSummary
}

type chunkDetailMsg struct {
	x, y   int
	detail *api.ChunkDetail
}

type viewerMovedMsg struct {
	resp api.MoveViewerResponse
}

type streamErrorMsg string

type streamTickMsg struct {
	generation int
}
