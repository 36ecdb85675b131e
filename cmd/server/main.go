package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/VoidMesh/worldstream/internal/config"
	"github.com/VoidMesh/worldstream/internal/logging"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Structured)
	logger := logging.NewDefaultLoggerWrapper()
	logger.Debug("Configuration loaded", "server_port", cfg.Server.Port, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)

	manifest, err := config.LoadManifest(cfg.World.ManifestPath)
	if err != nil {
		logging.GetLogger().Fatal("Failed to load world manifest", "path", cfg.World.ManifestPath, "error", err)
	}
	logger.Info("World manifest loaded",
		"path", cfg.World.ManifestPath,
		"default_world", manifest.DefaultWorld,
		"worlds", len(manifest.Worlds),
		"special_regions", len(manifest.SpecialRegions),
	)

	app, err := newApplication(cfg, manifest, logger)
	if err != nil {
		logging.GetLogger().Fatal("Failed to start worldstream", "error", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting worldstream server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.GetLogger().Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutting down server...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	app.close()

	logger.Info("Server exited")
}
