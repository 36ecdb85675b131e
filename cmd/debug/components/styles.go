package components

import (
	"github.com/charmbracelet/lipgloss"
)

// Color definitions
var (
	// Primary colors
	PrimaryColor   = lipgloss.Color("#7D56F4")
	SecondaryColor = lipgloss.Color("#04B575")
	AccentColor    = lipgloss.Color("#FFD700")
	DangerColor    = lipgloss.Color("#F25D94")

	// Grayscale
	LightGray = lipgloss.Color("#D9D9D9")
	Gray      = lipgloss.Color("#8B8B8B")
	DarkGray  = lipgloss.Color("#383838")

	// Chunk state colors
	LoadedColor    = lipgloss.Color("#00FF00") // Lime
	LoadingColor   = lipgloss.Color("#FFA500") // Orange
	CachedColor    = lipgloss.Color("#1E90FF") // DodgerBlue
	UnloadingColor = lipgloss.Color("#8B0000") // DarkRed
	BlockedColor   = lipgloss.Color("#696969") // DimGray
)

// Base styles
var (
	// Title styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Align(lipgloss.Center).
			Padding(1, 2)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true).
			Padding(0, 1)

	// Border styles
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gray).
			Padding(1)

	// Menu styles
	MenuItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 2)

	SelectedMenuItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(PrimaryColor).
				Bold(true).
				Padding(0, 2)

	// Info panel styles
	InfoPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor).
			Padding(1).
			Width(34)

	// Status bar style
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(DarkGray).
			Padding(0, 1)

	MessageStyle = lipgloss.NewStyle().
			Foreground(AccentColor).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(DangerColor).
			Bold(true).
			Padding(0, 1)

	// Help styles
	HelpStyle = lipgloss.NewStyle().
			Foreground(Gray).
			Italic(true).
			Padding(1)

	// Grid styles (for chunk visualization)
	GridCellStyle = lipgloss.NewStyle().
			Width(3).
			Height(1).
			Align(lipgloss.Center)

	GridSelectedCellStyle = lipgloss.NewStyle().
				Width(3).
				Height(1).
				Align(lipgloss.Center).
				Background(PrimaryColor).
				Foreground(lipgloss.Color("#FAFAFA"))

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 1).
			Width(30)
)

// Chunk grid symbols
const (
	LoadedSymbol    = "[]"
	LoadingSymbol   = ".."
	CachedSymbol    = "()"
	UnloadingSymbol = "xx"
	EmptySymbol     = "  "
	ViewerSymbol    = "@@"
)

// StateSymbol returns the grid symbol for a chunk state name.
func StateSymbol(state string) string {
	switch state {
	case "LOADED":
		return LoadedSymbol
	case "LOADING":
		return LoadingSymbol
	case "CACHED":
		return CachedSymbol
	case "UNLOADING":
		return UnloadingSymbol
	default:
		return EmptySymbol
	}
}

// StateColor returns the grid color for a chunk state name.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "LOADED":
		return LoadedColor
	case "LOADING":
		return LoadingColor
	case "CACHED":
		return CachedColor
	case "UNLOADING":
		return UnloadingColor
	default:
		return Gray
	}
}

// Layout helpers
func CenterText(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(text)
}
