package main

//
//  @title           polypulse API
//  @version         1.0
//  @description     Prediction-market price and volume charts.
//  @termsOfService  https://github.com/guttosm/polypulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/polypulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        markets
//  @tag.description Market listing
//
//  @tag.name        charts
//  @tag.description Price and volume charts per market
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/polypulse/config"
	migrations "github.com/guttosm/polypulse/db"
	_ "github.com/guttosm/polypulse/docs" // swagger docs
	"github.com/guttosm/polypulse/internal/app"
	"github.com/guttosm/polypulse/internal/chart"
	"github.com/guttosm/polypulse/internal/ingestion"
	"github.com/guttosm/polypulse/internal/logger"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// renderToFile builds the chart of market and writes it as a PNG to out.
// An empty market selects the default market of the dataset.
func renderToFile(ctx context.Context, cfg config.Config, market, out string) error {
	table, err := app.BuildTable(ctx, cfg, nil)
	if err != nil {
		return err
	}
	if market == "" {
		market = table.DefaultMarket()
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}

	opts := chart.RenderOptions{Width: cfg.Chart.Width, Height: cfg.Chart.Height}
	if err := chart.RenderPNG(chart.Assemble(table, market), f, opts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	logger.L().Info().Str("market", market).Str("out", out).Msg("chart rendered")
	return nil
}

// fatalLoad logs a load failure, naming the offending file and line when the
// input itself is malformed.
func fatalLoad(err error, msg string) {
	var dfe *ingestion.DataFormatError
	if errors.As(err, &dfe) {
		logger.L().Fatal().Err(err).Str("source", dfe.Source).Int("line", dfe.Line).Str("field", dfe.Field).Msg("malformed input data")
	}
	logger.L().Fatal().Err(err).Msg(msg)
}

// main is the entry point of the polypulse application.
//
// Modes (selected via --mode flag):
//   - api:    Loads the panel and serves markets and charts over HTTP.
//   - ingest: Copies the CSV panel at --path into PostgreSQL (runs migrations first).
//   - render: Writes the chart of --market to --out as a PNG and exits.
//
// Flags:
//   - --mode: Execution mode ("api", "ingest" or "render"). Default: "api".
//   - --path: CSV file or directory. Defaults to value from config (DATA_PATH).
//   - --port: Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api, ingest or render")
	path := flag.String("path", config.AppConfig.Data.Path, "CSV file or directory with .csv files")
	parallel := flag.Int("parallel", config.AppConfig.Data.Parallel, "How many files to process concurrently (0=auto up to CPU, max 8)")
	force := flag.Bool("force", false, "Reprocess files even if already ingested (deletes their existing rows)")
	market := flag.String("market", "", "Market to render (render mode; default: first market in the data)")
	out := flag.String("out", "chart.png", "Output PNG file (render mode)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	cfg := config.AppConfig
	cfg.Data.Path = *path
	cfg.Data.Parallel = *parallel

	switch *mode {
	case "ingest":
		// Ingestion mode: copy raw panel rows into PostgreSQL
		logger.L().Info().Str("path", *path).Msg("running ingestion")

		// Direct DB connection for ingestion
		db, err := app.InitPostgres(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		if err := migrations.Migrate(db); err != nil {
			logger.L().Fatal().Err(err).Msg("migrations failed")
		}
		if err := ingestion.IngestPath(ctx, *path, db, *parallel, *force); err != nil {
			fatalLoad(err, "ingestion failed")
		}
		logger.L().Info().Msg("ingestion completed successfully")

	case "render":
		// Render mode: one chart to a file, CSV source only
		cfg.Data.Source = config.SourceCSV
		if err := renderToFile(ctx, cfg, *market, *out); err != nil {
			fatalLoad(err, "render failed")
		}

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		config.AppConfig = cfg
		router, cleanup, err := app.InitializeApp(ctx)
		if err != nil {
			fatalLoad(err, "app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
