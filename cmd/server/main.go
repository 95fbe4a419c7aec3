package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"marathon-readiness/toolkit/internal/config"
	"marathon-readiness/toolkit/internal/db"
	"marathon-readiness/toolkit/internal/logging"
	"marathon-readiness/toolkit/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Marathon readiness toolkit starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Remote state store via GORM
	gormDB, err := db.InitORM(cfg.DBDriver, cfg.DBPath, cfg.PostgresDSN())
	if err != nil {
		logging.Error("Failed to connect to state store", "error", err.Error())
		log.Fatalf("Failed to connect to state store: %v", err)
	}

	// Raw-SQL connection backs the API key lookup; only available on the
	// postgres driver. Without it, bearer tokens are the only auth scheme.
	var sqlxDB *sqlx.DB
	if cfg.DBDriver == "postgres" {
		sqlxDB, err = db.InitPostgres(cfg.PostgresDSN())
		if err != nil {
			logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
			log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
		}
		logging.Info("Connected to Postgres (sqlx)")
	}

	upSince := time.Now()

	router, flusher, err := routes.RegisterRoutes(cfg, gormDB, sqlxDB, upSince)
	if err != nil {
		logging.Error("Failed to initialize dependencies", "error", err.Error())
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Server shutdown error", "error", err.Error())
		}

		// Pending debounced writes must land before we exit
		flusher.Stop(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server exited with error", "error", err.Error())
		log.Fatalf("Server exited with error: %v", err)
	}
	logging.Info("Server stopped")
}
