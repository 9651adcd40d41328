package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"visitscheduler/config"
	"visitscheduler/internal/adapters/auth"
	"visitscheduler/internal/adapters/nonassociations"
	"visitscheduler/internal/adapters/prisoner"
	delivery "visitscheduler/internal/delivery/http"
	"visitscheduler/internal/delivery/http/controllers"
	"visitscheduler/internal/delivery/http/middleware"
	"visitscheduler/internal/repository/postgres"
	"visitscheduler/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	prisonerDirectory := prisoner.NewHTTPDirectory(cfg.PrisonerAPIURL, httpClient)
	nonAssociationDirectory := nonassociations.NewHTTPDirectory(cfg.NonAssociationsAPIURL, httpClient)

	availability := services.NewAvailabilityService(
		postgres.NewSessionTemplateRepository(db),
		postgres.NewPrisonRepository(db),
		postgres.NewBookingRepository(db),
		prisonerDirectory,
		nonAssociationDirectory,
		logger,
		cfg.RequestTimeout,
	)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	controller := controllers.NewVisitSessionController(logger, availability)
	mux := delivery.NewRouter(controller, verifier, logger)

	handler := middleware.MetricsMiddleware(middleware.LoggingMiddleware(logger, mux))
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
	logger.Info("server stopped")
}
