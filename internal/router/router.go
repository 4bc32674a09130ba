package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studytime-backend/internal/handlers"
	"studytime-backend/internal/middleware"
	"studytime-backend/internal/websocket"
)

func New(
	sessionHandler *handlers.SessionHandler,
	statsHandler *handlers.StatsHandler,
	reportHandler *handlers.ReportHandler,
	wsHub *websocket.Hub,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)

	// Mutation rate limiter (30 req/min per IP)
	writeLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/communities/{communityID}", func(r chi.Router) {
			r.Use(middleware.Identity)

			// ──── Session Lifecycle ────
			r.Route("/sessions", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(writeLimiter.Middleware)
					r.Post("/start", sessionHandler.Start)
					r.Post("/stop", sessionHandler.Stop)
					r.Post("/", sessionHandler.Add)
					r.Patch("/{id}", sessionHandler.Update)
					r.Delete("/{id}", sessionHandler.Delete)
				})

				r.Get("/active", sessionHandler.Active)
				r.Get("/recent", sessionHandler.Recent)
			})

			// ──── Aggregation ────
			r.Get("/log", statsHandler.Log)
			r.Get("/ranking", statsHandler.Ranking)
			r.Get("/report", reportHandler.Daily)
		})

		// ──── WebSocket report relay ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
