package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/VoidMesh/worldstream/internal/api"
	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/config"
	"github.com/VoidMesh/worldstream/internal/coords"
	"github.com/VoidMesh/worldstream/internal/db"
	"github.com/VoidMesh/worldstream/internal/engine"
	"github.com/VoidMesh/worldstream/internal/gate"
	"github.com/VoidMesh/worldstream/internal/loader"
	"github.com/VoidMesh/worldstream/internal/logging"
	"github.com/VoidMesh/worldstream/internal/streaming"
	"github.com/VoidMesh/worldstream/internal/template"
	"github.com/VoidMesh/worldstream/internal/template/procedural"
	"github.com/VoidMesh/worldstream/internal/template/tiled"
)

// application owns every long-lived component of the server process.
type application struct {
	conn     *sql.DB
	loader   *loader.Loader
	loop     *engine.Loop
	router   http.Handler
	logger   logging.LoggerInterface
	cancel   context.CancelFunc
	loopDone chan struct{}
}

// newApplication opens the database, builds the streaming stack and starts
// the engine loop. Callers must call close.
func newApplication(cfg *config.Config, manifest config.Manifest, logger logging.LoggerInterface) (*application, error) {
	conn, err := db.Open(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.Migrate(conn, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	regionGate, err := gate.NewStore(ctx, db.NewLoggingQueries(conn, logger), logger)
	if err != nil {
		cancel()
		conn.Close()
		return nil, fmt.Errorf("failed to load region gate: %w", err)
	}

	// Streaming stack
	sys := newCoordinateSystem(manifest)
	templates := template.NewCache(template.Chain(
		tiled.NewLoader(cfg.World.MapDir, logger),
		procedural.NewLoader(cfg.World.Seed, sys, logger),
	), logger)

	states := chunk.NewStateManager(nil)
	chunkLoader := loader.New(loader.Config{
		MaxConcurrentLoads: cfg.Streaming.MaxConcurrentLoads,
		PoolSize:           cfg.Streaming.LoadingPoolSize,
		MaxLoadingTime:     cfg.Streaming.MaxLoadingTime,
		ShutdownGrace:      cfg.Streaming.ShutdownGrace,
	}, loader.ChunkBuilder(templates, sys), states, logger)

	manager := streaming.NewManager(streaming.Config{
		LoadRadius:    cfg.Streaming.LoadRadius,
		PreloadRadius: cfg.Streaming.PreloadRadius,
		CacheRadius:   cfg.Streaming.CacheRadius,
		Topology:      streaming.ParseTopology(manifest.Topology),
	}, sys, chunkLoader, states, streaming.RegionsFromManifest(manifest), regionGate, streaming.NewLoggingHooks(logger), logger)

	app := &application{
		conn:     conn,
		loader:   chunkLoader,
		loop:     engine.NewLoop(manager, cfg.Streaming.TickInterval, logger),
		logger:   logger,
		cancel:   cancel,
		loopDone: make(chan struct{}),
	}

	go func() {
		defer close(app.loopDone)
		if err := app.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Engine loop failed", "error", err)
		}
	}()

	// Initialize API handlers
	handler := api.NewHandler(app.loop, regionGate, chunkLoader, templates, logger)
	app.router = api.SetupRoutes(handler)

	return app, nil
}

// close stops the loop, which closes the manager and cancels in-flight
// loads, then drains the loader and closes the database.
func (a *application) close() {
	a.cancel()
	<-a.loopDone

	if err := a.loader.Shutdown(); err != nil {
		a.logger.Warn("Chunk loader did not drain in time", "error", err)
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}

func newCoordinateSystem(m config.Manifest) *coords.System {
	perWorld := make(map[string]coords.Dimensions, len(m.Worlds))
	for _, w := range m.Worlds {
		perWorld[w.Name] = coords.Dimensions{Width: w.Width, Height: w.Height}
	}
	return coords.NewSystem(m.TileSize, coords.Dimensions{
		Width:  m.DefaultDimensions.Width,
		Height: m.DefaultDimensions.Height,
	}, perWorld)
}
