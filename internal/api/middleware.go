package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/VoidMesh/worldstream/internal/logging"
)

// routerTimeout sits just past requestTimeout so an engine call that runs
// out of budget still gets to render its own 503.
const routerTimeout = requestTimeout + time.Second

func SetupMiddleware(logger logging.LoggerInterface) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		RequestLogger(logger),
		middleware.Recoverer,

		// The debug TUI and browser inspectors call from other origins.
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}),

		middleware.SetHeader("Content-Type", "application/json"),
		middleware.Timeout(routerTimeout),
	}
}

// RequestLogger logs each request through the service logger. Polling
// reads go to debug so the TUI's refresh loop does not flood the log.
func RequestLogger(logger logging.LoggerInterface) func(http.Handler) http.Handler {
	logger = logger.With("component", "http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Warn("Request failed", fields...)
			case r.Method == http.MethodGet || r.Method == http.MethodOptions:
				logger.Debug("Request served", fields...)
			default:
				logger.Info("Request served", fields...)
			}
		})
	}
}
