package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/polypulse/config"
	"github.com/guttosm/polypulse/internal/api"
	"github.com/guttosm/polypulse/internal/chart"
	"github.com/guttosm/polypulse/internal/dataset"
	"github.com/guttosm/polypulse/internal/middleware"
	"github.com/guttosm/polypulse/internal/service"
)

// ErrEmptyDataset is reported by the readiness check when no "yes" rows were loaded.
var ErrEmptyDataset = errors.New("dataset has no retained rows")

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres() when DATA_SOURCE=postgres.
//   - Loads and prepares the panel dataset (see BuildTable).
//   - Creates the chart service and the HTTP handler layer.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred. A malformed input file
//     surfaces here as an *ingestion.DataFormatError.
func InitializeApp(ctx context.Context) (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	var db *sql.DB
	if cfg.UsesPostgres() {
		// indirection for unit testing
		var err error
		db, err = postgresOpener(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
	}

	// Cleanup resources on shutdown
	cleanup := func() {
		if db != nil {
			_ = db.Close()
		}
	}

	table, err := BuildTable(ctx, cfg, db)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Initialize service layer (read-only over the prepared table)
	svc := service.NewChartService(table)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc, chart.RenderOptions{Width: cfg.Chart.Width, Height: cfg.Chart.Height})

	// Setup Gin router with routes
	middleware.ConfigureRateLimit(cfg.Server.RateLimitPerMinute, time.Minute)
	router := api.NewRouter(handler)

	// Register health and readiness probes
	checks := []func() error{datasetCheck(table)}
	if db != nil {
		checks = append(checks, db.Ping)
	}
	api.NewHealthHandler(checks...).Register(router)

	return router, cleanup, nil
}

func datasetCheck(table *dataset.Table) func() error {
	return func() error {
		if table.Len() == 0 {
			return ErrEmptyDataset
		}
		return nil
	}
}
