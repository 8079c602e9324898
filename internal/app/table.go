package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/polypulse/config"
	"github.com/guttosm/polypulse/internal/dataset"
	"github.com/guttosm/polypulse/internal/domain/models"
	"github.com/guttosm/polypulse/internal/ingestion"
	"github.com/guttosm/polypulse/internal/logger"
	"github.com/guttosm/polypulse/internal/storage"
)

// ErrNoDatabase is returned when the postgres source is selected without a connection.
var ErrNoDatabase = errors.New("postgres data source requires a database connection")

// storeCtor is an indirection for creating the repository; tests can override this.
var storeCtor = func(db *sql.DB) storage.ObservationsRepository {
	return storage.NewObservationsRepository(db)
}

// BuildTable loads the raw panel from the configured source and prepares it.
//
// Sources:
//   - csv: cfg.Data.Path, a single file or a directory of files.
//   - postgres: every row of the observations table, in ingestion order.
func BuildTable(ctx context.Context, cfg config.Config, db *sql.DB) (*dataset.Table, error) {
	start := time.Now()

	rows, err := loadRows(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	table := dataset.Prepare(rows)
	logger.Component("dataset").Info().
		Str("source", cfg.Data.Source).
		Int("raw_rows", len(rows)).
		Int("yes_rows", table.Len()).
		Int("markets", len(table.Markets())).
		Dur("elapsed", time.Since(start)).
		Msg("dataset prepared")
	return table, nil
}

func loadRows(ctx context.Context, cfg config.Config, db *sql.DB) ([]models.Observation, error) {
	if !cfg.UsesPostgres() {
		rows, err := ingestion.Load(ctx, cfg.Data.Path, cfg.Data.Parallel)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cfg.Data.Path, err)
		}
		return rows, nil
	}

	if db == nil {
		return nil, ErrNoDatabase
	}
	rows, err := storeCtor(db).LoadObservations()
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	return rows, nil
}
