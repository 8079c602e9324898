package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guttosm/polypulse/config"
	"github.com/guttosm/polypulse/internal/ingestion"
)

const panelCSV = `event_market_name,question,token_outcome_name,trade_date,avg_price,daily_volume
Fed Hold March,Will the Fed hold?,Yes,2024-01-01,0.4,100
Fed Hold March,Will the Fed hold?,No,2024-01-01,0.6,50
Fed Hold March,Will the Fed cut?,Yes,2024-01-01,0.7,30
`

func writePanel(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "panel.csv")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func csvConfig(path string) config.Config {
	return config.Config{
		Server: config.ServerConfig{Port: "0", RateLimitPerMinute: 1000},
		Data:   config.DataConfig{Source: config.SourceCSV, Path: path},
		Chart:  config.ChartConfig{Width: 400, Height: 300},
	}
}

// TestInitPostgres_InvalidHost expects ping failure.
func TestInitPostgres_InvalidHost(t *testing.T) {
	cfg := config.Config{Postgres: config.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     54329, // unlikely mapped
		User:     "x",
		Password: "y",
		DBName:   "z",
		SSLMode:  "disable",
	}}
	db, err := InitPostgres(cfg)
	if err == nil {
		_ = db.Close()
		t.Fatalf("expected error connecting to invalid DB")
	}
}

// TestInitializeApp_DBFailure ensures InitializeApp returns error when DB cannot connect.
func TestInitializeApp_DBFailure(t *testing.T) {
	// Backup and override global config
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = config.Config{
		Data: config.DataConfig{Source: config.SourcePostgres},
		Postgres: config.PostgresConfig{
			Host:     "127.0.0.1",
			Port:     54329,
			User:     "x",
			Password: "y",
			DBName:   "z",
			SSLMode:  "disable",
		},
	}

	r, cleanup, err := InitializeApp(context.Background())
	if err == nil || r != nil || cleanup != nil {
		if cleanup != nil {
			cleanup()
		}
		t.Fatalf("expected error from InitializeApp with invalid DB config")
	}
}

func TestInitializeApp_CSVHappyPath(t *testing.T) {
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = csvConfig(writePanel(t, panelCSV))

	router, cleanup, err := InitializeApp(context.Background())
	if err != nil || router == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: %v", err)
	}
	defer cleanup()

	for _, path := range []string{"/healthz", "/readyz", "/api/v1/markets", "/api/v1/chart?market=Fed+Hold+March"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, w.Code, w.Body.String())
		}
	}
}

func TestInitializeApp_MalformedCSV(t *testing.T) {
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = csvConfig(writePanel(t, "event_market_name,question\nA,B\n"))

	_, _, err := InitializeApp(context.Background())
	var dfe *ingestion.DataFormatError
	if !errors.As(err, &dfe) {
		t.Fatalf("expected DataFormatError, got %v", err)
	}
}

func TestInitializeApp_EmptyDatasetNotReady(t *testing.T) {
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = csvConfig(writePanel(t, "event_market_name,question,token_outcome_name,trade_date,avg_price,daily_volume\n"))

	router, cleanup, err := InitializeApp(context.Background())
	if err != nil {
		t.Fatalf("InitializeApp failed: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d", w.Code)
	}
}

func TestInitializeApp_PostgresHappyPath(t *testing.T) {
	// Override opener to return a sqlmock DB
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	mock.ExpectQuery("SELECT event_market_name").WillReturnRows(
		sqlmock.NewRows([]string{"event_market_name", "question", "token_outcome_name", "trade_date", "avg_price", "daily_volume"}).
			AddRow("M", "Q", "Yes", mustDate(t, "2024-01-01"), 0.5, 10.0),
	)
	mock.ExpectPing()
	mock.ExpectClose()

	oldOpener := postgresOpener
	postgresOpener = func(cfg config.Config) (*sql.DB, error) { return db, nil }
	oldCfg := config.AppConfig
	config.AppConfig = config.Config{
		Data:  config.DataConfig{Source: config.SourcePostgres},
		Chart: config.ChartConfig{Width: 400, Height: 300},
	}
	t.Cleanup(func() {
		postgresOpener = oldOpener
		config.AppConfig = oldCfg
	})

	router, cleanup, err := InitializeApp(context.Background())
	if err != nil || router == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", w.Code)
	}

	// Call cleanup and ensure it doesn't panic
	cleanup()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
