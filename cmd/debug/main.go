package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/VoidMesh/worldstream/cmd/debug/client"
	"github.com/VoidMesh/worldstream/cmd/debug/models"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Base URL of the worldstream server")
	startView := flag.String("view", "menu", "Starting view (menu, stream, regions, overview)")
	logLevel := flag.String("log", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Setup logging
	switch *logLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	// Setup file logging for debug
	if len(os.Getenv("DEBUG")) > 0 {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	app := models.NewApp(client.New(*addr), *startView)

	// Create and run the Bubble Tea program
	program := tea.NewProgram(app, tea.WithAltScreen())

	log.Info("Starting worldstream debug tool", "addr", *addr, "start_view", *startView)

	if _, err := program.Run(); err != nil {
		log.Fatal("Error running debug tool", "error", err)
	}
}
