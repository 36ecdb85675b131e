package models

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/VoidMesh/worldstream/internal/api"
)

// API is the subset of the worldstream HTTP API the debug tool drives.
type API interface {
	Viewer(ctx context.Context) (api.ViewerResponse, error)
	MoveViewer(ctx context.Context, chunkX, chunkY int) (api.MoveViewerResponse, error)
	Chunks(ctx context.Context) (api.ChunkListResponse, error)
	Chunk(ctx context.Context, chunkX, chunkY int) (api.ChunkDetail, error)
	Stats(ctx context.Context) (api.StatsResponse, error)
	Regions(ctx context.Context) (api.RegionListResponse, error)
	UnlockRegion(ctx context.Context, region string) (api.RegionResponse, error)
	LockRegion(ctx context.Context, region string) (api.RegionResponse, error)
}

// ViewType represents the different views in the debug tool
type ViewType int

const (
	MenuView ViewType = iota
	StreamExplorerView
	RegionsView
	OverviewView

	viewCount
)

// App is the main application model
type App struct {
	client API

	// Current state
	currentView ViewType
	width       int
	height      int

	// View models
	menu     MenuModel
	explorer StreamExplorerModel
	regions  RegionsModel
	overview OverviewModel

	// UI state
	showHelp bool
}

// NewApp creates a new application instance
func NewApp(client API, startView string) *App {
	app := &App{
		client:      client,
		currentView: MenuView,
	}

	// Initialize view models
	app.menu = NewMenuModel(client)
	app.explorer = NewStreamExplorerModel(client)
	app.regions = NewRegionsModel(client)
	app.overview = NewOverviewModel(client)

	// Set starting view based on parameter
	switch startView {
	case "stream":
		app.currentView = StreamExplorerView
	case "regions":
		app.currentView = RegionsView
	case "overview":
		app.currentView = OverviewView
	default:
		app.currentView = MenuView
	}

	return app
}

// CurrentView reports which view is active.
func (m *App) CurrentView() ViewType {
	return m.currentView
}

// Init initializes the application
func (m *App) Init() tea.Cmd {
	log.Debug("Initializing debug tool", "view", m.currentView)
	return m.initView()
}

// Update handles messages and updates the application state
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Update all view models with new size
		m.menu.SetSize(msg.Width, msg.Height)
		m.explorer.SetSize(msg.Width, msg.Height)
		m.regions.SetSize(msg.Width, msg.Height)
		m.overview.SetSize(msg.Width, msg.Height)

		return m, nil

	case tea.KeyMsg:
		// Text entry owns the keyboard until it is submitted or cancelled.
		if m.currentView == RegionsView && m.regions.Editing() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.currentView == MenuView {
				return m, tea.Quit
			}
			// If not in menu, go back to menu instead of quitting
			m.leaveView()
			m.currentView = MenuView
			return m, m.menu.Init()

		case "?":
			m.showHelp = !m.showHelp
			return m, nil

		case "tab":
			m.leaveView()
			m.currentView = (m.currentView + 1) % viewCount
			return m, m.initView()
		}

	case SwitchViewMsg:
		m.leaveView()
		m.currentView = msg.View
		return m, m.initView()
	}

	// Handle help view
	if m.showHelp {
		return m, nil
	}

	// Route message to current view
	switch m.currentView {
	case MenuView:
		newModel, cmd := m.menu.Update(msg)
		m.menu = newModel.(MenuModel)
		return m, cmd
	case StreamExplorerView:
		newModel, cmd := m.explorer.Update(msg)
		m.explorer = newModel.(StreamExplorerModel)
		return m, cmd
	case RegionsView:
		newModel, cmd := m.regions.Update(msg)
		m.regions = newModel.(RegionsModel)
		return m, cmd
	case OverviewView:
		newModel, cmd := m.overview.Update(msg)
		m.overview = newModel.(OverviewModel)
		return m, cmd
	}

	return m, nil
}

// View renders the application
func (m *App) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	switch m.currentView {
	case MenuView:
		return m.menu.View()
	case StreamExplorerView:
		return m.explorer.View()
	case RegionsView:
		return m.regions.View()
	case OverviewView:
		return m.overview.View()
	}

	return "Unknown view"
}

func (m *App) initView() tea.Cmd {
	switch m.currentView {
	case StreamExplorerView:
		return m.explorer.Init()
	case RegionsView:
		return m.regions.Init()
	case OverviewView:
		return m.overview.Init()
	}
	return m.menu.Init()
}

// leaveView stops the auto-refresh loops of views that own one.
func (m *App) leaveView() {
	switch m.currentView {
	case StreamExplorerView:
		m.explorer.Reset()
	case OverviewView:
		m.overview.Reset()
	}
}

// renderHelp renders the help screen
func (m *App) renderHelp() string {
	help := `
+- Worldstream Debug Tool - Help ----------------------+
|                                                      |
| Global Keys:                                         |
|   q, Ctrl+C    Quit (from menu) / Back to menu       |
|   ?            Toggle this help                      |
|   Tab          Cycle through views                   |
|   1-3          Select view (from menu)               |
|                                                      |
| Views:                                               |
|   1. Stream Explorer  - Chunk states around viewer   |
|   2. Region Gates     - Unlock and relock regions    |
|   3. Overview         - Streaming counters           |
|                                                      |
| Navigation:                                          |
|   Arrow keys   Navigate grids and menus              |
|   Enter        Select/Confirm                        |
|   Esc          Cancel                                |
|   r            Refresh current view                  |
|                                                      |
| Press ? again to close this help                     |
+------------------------------------------------------+
`
	return help
}

// SwitchViewMsg is a message to switch views
type SwitchViewMsg struct {
	View ViewType
}

// NewSwitchViewMsg creates a new switch view message
func NewSwitchViewMsg(view ViewType) SwitchViewMsg {
	return SwitchViewMsg{View: view}
}
