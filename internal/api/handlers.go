package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/engine"
	"github.com/VoidMesh/worldstream/internal/gate"
	"github.com/VoidMesh/worldstream/internal/loader"
	"github.com/VoidMesh/worldstream/internal/logging"
	"github.com/VoidMesh/worldstream/internal/streaming"
)

const requestTimeout = 5 * time.Second

// Engine runs a function on the goroutine that owns the manager.
type Engine interface {
	Do(ctx context.Context, fn func(m *streaming.Manager) error) error
}

type LoaderStats interface {
	Stats() loader.Stats
}

type TemplateCatalog interface {
	Names() []string
}

type Handler struct {
	engine    Engine
	regions   gate.Unlocker
	loader    LoaderStats
	templates TemplateCatalog
	logger    logging.LoggerInterface
}

func NewHandler(eng Engine, regions gate.Unlocker, loaderStats LoaderStats, templates TemplateCatalog, logger logging.LoggerInterface) *Handler {
	return &Handler{
		engine:    eng,
		regions:   regions,
		loader:    loaderStats,
		templates: templates,
		logger:    logger.With("component", "api"),
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "worldstream",
		"version":   "1.0.0",
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *Handler) GetViewer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var response ViewerResponse
	err := h.engine.Do(ctx, func(m *streaming.Manager) error {
		response = viewerOf(m)
		return nil
	})
	if err != nil {
		h.renderEngineError(w, r, "failed to read viewer", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *Handler) MoveViewer(w http.ResponseWriter, r *http.Request) {
	var req MoveViewerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ChunkX == nil || req.ChunkY == nil {
		h.renderError(w, r, http.StatusBadRequest, "chunk_x and chunk_y are required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var response MoveViewerResponse
	err := h.engine.Do(ctx, func(m *streaming.Manager) error {
		moved, err := m.OnViewerMoved(*req.ChunkX, *req.ChunkY)
		response = MoveViewerResponse{Moved: moved, Viewer: viewerOf(m)}
		return err
	})
	if errors.Is(err, streaming.ErrRegionLocked) {
		h.renderError(w, r, http.StatusLocked, "region is locked", err)
		return
	}
	if err != nil {
		h.renderEngineError(w, r, "failed to move viewer", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *Handler) ListChunks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var response ChunkListResponse
	err := h.engine.Do(ctx, func(m *streaming.Manager) error {
		keys := m.LoadedKeys()
		response.Chunks = make([]ChunkSummary, 0, len(keys))
		for _, key := range keys {
			c, _ := m.Chunk(key)
			response.Chunks = append(response.Chunks, summaryOf(m, c))
		}
		response.Count = len(keys)
		return nil
	})
	if err != nil {
		h.renderEngineError(w, r, "failed to list chunks", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *Handler) GetChunk(w http.ResponseWriter, r *http.Request) {
	chunkX, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid chunk x coordinate", err)
		return
	}
	chunkY, err := strconv.Atoi(chi.URLParam(r, "y"))
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid chunk y coordinate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		detail   ChunkDetail
		resident bool
	)
	err = h.engine.Do(ctx, func(m *streaming.Manager) error {
		c, ok := m.Chunk(chunk.Key{X: chunkX, Y: chunkY})
		if !ok {
			return nil
		}
		resident = true
		detail = ChunkDetail{
			ChunkSummary: summaryOf(m, c),
			Width:        c.Width(),
			Height:       c.Height(),
			Layers:       c.LayerCount(),
			Passability:  c.PassabilityRows(),
		}
		return nil
	})
	if err != nil {
		h.renderEngineError(w, r, "failed to read chunk", err)
		return
	}
	if !resident {
		h.renderError(w, r, http.StatusNotFound, "chunk is not resident", nil)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, detail)
}

func (h *Handler) GetPassable(w http.ResponseWriter, r *http.Request) {
	worldX, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid x coordinate", err)
		return
	}
	worldY, err := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid y coordinate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response := PassableResponse{WorldX: worldX, WorldY: worldY}
	err = h.engine.Do(ctx, func(m *streaming.Manager) error {
		key := m.ChunkCoordinateOf(worldX, worldY)
		response.ChunkX, response.ChunkY = key.X, key.Y
		response.Passable = m.IsPassable(worldX, worldY)
		return nil
	})
	if err != nil {
		h.renderEngineError(w, r, "failed to query passability", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *Handler) SetPassable(w http.ResponseWriter, r *http.Request) {
	var req SetPassableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.WorldX == nil || req.WorldY == nil || req.Passable == nil {
		h.renderError(w, r, http.StatusBadRequest, "world_x, world_y and passable are required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var applied bool
	err := h.engine.Do(ctx, func(m *streaming.Manager) error {
		applied = m.SetTilePassable(*req.WorldX, *req.WorldY, *req.Passable)
		return nil
	})
	if err != nil {
		h.renderEngineError(w, r, "failed to set passability", err)
		return
	}
	if !applied {
		h.renderError(w, r, http.StatusNotFound, "no resident chunk at point", nil)
		return
	}

	h.logger.Info("Tile passability overridden", "world_x", *req.WorldX, "world_y", *req.WorldY, "passable", *req.Passable)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, PassableResponse{WorldX: *req.WorldX, WorldY: *req.WorldY, Passable: *req.Passable})
}

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, RegionListResponse{Unlocked: h.regions.Unlocked()})
}

func (h *Handler) UnlockRegion(w http.ResponseWriter, r *http.Request) {
	regionID := chi.URLParam(r, "regionID")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.regions.UnlockRegion(ctx, regionID); err != nil {
		h.renderRegionError(w, r, "failed to unlock region", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RegionResponse{Region: regionID, Unlocked: true})
}

func (h *Handler) LockRegion(w http.ResponseWriter, r *http.Request) {
	regionID := chi.URLParam(r, "regionID")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.regions.LockRegion(ctx, regionID); err != nil {
		h.renderRegionError(w, r, "failed to lock region", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RegionResponse{Region: regionID, Unlocked: false})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	response := StatsResponse{
		Loader:    h.loader.Stats(),
		Templates: h.templates.Names(),
	}
	err := h.engine.Do(ctx, func(m *streaming.Manager) error {
		response.Manager = m.Stats()
		return nil
	})
	if err != nil {
		h.renderEngineError(w, r, "failed to read stats", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func viewerOf(m *streaming.Manager) ViewerResponse {
	key, placed := m.Viewer()
	if !placed {
		return ViewerResponse{}
	}
	return ViewerResponse{
		Placed: true,
		ChunkX: key.X,
		ChunkY: key.Y,
		World:  m.ResolveWorldName(key.X, key.Y),
	}
}

func summaryOf(m *streaming.Manager, c *chunk.Chunk) ChunkSummary {
	key := c.Key()
	return ChunkSummary{
		ChunkX:   key.X,
		ChunkY:   key.Y,
		World:    c.WorldName(),
		State:    m.ChunkState(key).String(),
		Attached: m.IsAttached(key),
		Bounds:   c.Bounds(),
	}
}

func (h *Handler) renderEngineError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, engine.ErrLoopStopped) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	h.renderError(w, r, status, message, err)
}

func (h *Handler) renderRegionError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, gate.ErrEmptyRegion) {
		status = http.StatusBadRequest
	}
	h.renderError(w, r, status, message, err)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	errorResponse := ErrorResponse{
		Error:   message,
		Code:    status,
		Message: message,
	}

	if err != nil {
		h.logger.Error("API error", "error", err, "message", message, "status", status)
		// Don't expose internal errors to the client
		if status >= 500 {
			errorResponse.Error = "Internal server error"
		}
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse)
}
