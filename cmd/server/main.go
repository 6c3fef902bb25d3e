/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the inventory forecast server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config file and environment overrides
  2. Apply command-line flags
  3. Initialize SQLite catalog
  4. Create forecast engine and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  TOML config file (default: forecast.toml, optional)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  FORECAST_PORT, FORECAST_DB, FORECAST_MAX_DAYS, FORECAST_DEFAULT_UNIT,
  FORECAST_LOG_LEVEL, FORECAST_LOG_FORMAT, FORECAST_ALLOWED_ORIGINS

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Settings and precedence
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/inventory-forecast/api"
	"github.com/warp/inventory-forecast/config"
	"github.com/warp/inventory-forecast/generic"
	"github.com/warp/inventory-forecast/inventory"
	"github.com/warp/inventory-forecast/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "forecast.toml", "TOML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}

	logger := cfg.Log.NewLogger()
	log := logrus.NewEntry(logger)

	// Initialize store
	store, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	engine := inventory.NewForecastEngine()
	engine.MaxDays = cfg.Forecast.MaxDays
	engine.Log = log.WithField("component", "forecast")

	handler := api.NewHandler(store, engine, log.WithField("component", "api"))
	handler.DefaultUnit = generic.Unit(cfg.Forecast.DefaultUnit)

	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port": cfg.Server.Port,
			"db":   cfg.Server.DBPath,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
