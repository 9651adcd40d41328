package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"visitscheduler/internal/adapters/auth"
	"visitscheduler/internal/delivery/http/controllers"
	"visitscheduler/internal/delivery/http/middleware"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(visitSessionController *controllers.VisitSessionController, verifier auth.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// API Routes
	mux.HandleFunc("GET /visit-sessions", requireAuth(visitSessionController.GetVisitSessions))
	mux.HandleFunc("GET /visit-sessions/available", requireAuth(visitSessionController.GetAvailableVisitSessions))
	mux.HandleFunc("GET /visit-sessions/capacity", requireAuth(visitSessionController.GetSessionCapacity))

	// Prometheus
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
