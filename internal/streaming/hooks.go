package streaming

import (
	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/logging"
)

//go:generate mockgen -source=hooks.go -destination=../testmocks/mockstreaming/mock_hooks.go -package=mockstreaming

// Renderer is told when a chunk becomes visible and when it stops being
// visible. Calls strictly alternate per chunk and always come from the
// foreground loop.
type Renderer interface {
	Attach(c *chunk.Chunk)
	Detach(c *chunk.Chunk)
}

// EntityCleaner removes entities inside a chunk that is about to be torn down.
type EntityCleaner interface {
	RemoveEntitiesIn(bounds chunk.Rect)
}

// Hooks bundles the foreground collaborators. Nil members become no-ops.
type Hooks struct {
	Renderer Renderer
	Cleaner  EntityCleaner
}

type noopRenderer struct{}

func (noopRenderer) Attach(*chunk.Chunk) {}
func (noopRenderer) Detach(*chunk.Chunk) {}

type noopCleaner struct{}

func (noopCleaner) RemoveEntitiesIn(chunk.Rect) {}

func (h Hooks) withDefaults() Hooks {
	if h.Renderer == nil {
		h.Renderer = noopRenderer{}
	}
	if h.Cleaner == nil {
		h.Cleaner = noopCleaner{}
	}
	return h
}

// logHooks stands in for a renderer and an entity system in headless runs.
type logHooks struct {
	logger logging.LoggerInterface
}

// NewLoggingHooks returns hooks that only log what a renderer and entity
// system would have been asked to do.
func NewLoggingHooks(logger logging.LoggerInterface) Hooks {
	h := &logHooks{logger: logger.With("component", "streaming-hooks")}
	return Hooks{Renderer: h, Cleaner: h}
}

func (h *logHooks) Attach(c *chunk.Chunk) {
	h.logger.Debug("Attach chunk", "chunk_x", c.Key().X, "chunk_y", c.Key().Y, "world", c.WorldName())
}

func (h *logHooks) Detach(c *chunk.Chunk) {
	h.logger.Debug("Detach chunk", "chunk_x", c.Key().X, "chunk_y", c.Key().Y, "world", c.WorldName())
}

func (h *logHooks) RemoveEntitiesIn(bounds chunk.Rect) {
	h.logger.Debug("Remove entities",
		"min_x", bounds.MinX, "min_y", bounds.MinY,
		"max_x", bounds.MaxX, "max_y", bounds.MaxY)
}
