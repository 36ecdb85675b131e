package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func SetupRoutes(handler *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	for _, middleware := range SetupMiddleware(handler.logger) {
		r.Use(middleware)
	}

	// JSON content type
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// Health check endpoint
	r.Get("/health", handler.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/viewer", handler.GetViewer)
		r.Put("/viewer", handler.MoveViewer)

		r.Get("/chunks", handler.ListChunks)
		r.Get("/chunks/{x}/{y}", handler.GetChunk)

		r.Get("/passable", handler.GetPassable)
		r.Put("/tiles/passable", handler.SetPassable)

		r.Get("/regions", handler.ListRegions)
		r.Post("/regions/{regionID}/unlock", handler.UnlockRegion)
		r.Delete("/regions/{regionID}/unlock", handler.LockRegion)

		r.Get("/stats", handler.GetStats)
	})

	return r
}
