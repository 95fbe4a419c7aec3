package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"marathon-readiness/toolkit/internal/api"
	"marathon-readiness/toolkit/internal/config"
	"marathon-readiness/toolkit/internal/logging"
	"marathon-readiness/toolkit/internal/metrics"
	"marathon-readiness/toolkit/internal/middleware"
	"marathon-readiness/toolkit/internal/workers"
)

// RegisterRoutes builds the full router. The returned flusher must be
// stopped on shutdown so pending state writes reach the remote store.
func RegisterRoutes(cfg config.Config, gormDB *gorm.DB, sqlxDB *sqlx.DB, upSince time.Time) (http.Handler, *workers.StateFlusher, error) {

	r := chi.NewRouter()

	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-User-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	r.Get("/healthCheck", api.HealthCheckHandler(gormDB, upSince))
	r.Handle("/metrics", promhttp.Handler())

	deps, err := api.InitDependencies(cfg, gormDB, sqlxDB, metricsReg)
	if err != nil {
		return nil, nil, err
	}

	RegisterAPIRoutes(r, deps)

	return r, deps.Services.Flusher, nil
}
