package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/guttosm/polypulse/internal/domain/models"
	pq "github.com/lib/pq"
)

// ObservationsRepository defines contract for DB operations on the raw panel.
type ObservationsRepository interface {
	BeginSource(ctx context.Context, source string) (SourceWriter, error)
	LoadObservations() ([]models.Observation, error)
	HasIngestionForSource(source string) (bool, error)
	Ping() error
}

// SourceWriter stages the rows of one source file inside a single transaction.
// Readers see none of them until Commit, which also records the ingestion
// log entry. Rollback discards the staged rows and is a no-op after Commit.
type SourceWriter interface {
	InsertBatch(firstSeq int, obs []models.Observation) error
	Commit(rowCount int) error
	Rollback() error
}

type observationsRepository struct {
	db *sql.DB
}

func NewObservationsRepository(db *sql.DB) ObservationsRepository {
	return &observationsRepository{db: db}
}

type sourceWriter struct {
	tx     *sql.Tx
	source string
}

// BeginSource opens the transaction for source and clears any rows stored
// for it before, whether by a completed run being forced again or by rows
// left without a log entry.
func (r *observationsRepository) BeginSource(ctx context.Context, source string) (SourceWriter, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if _, err := tx.Exec(`DELETE FROM observations WHERE source = $1`, source); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &sourceWriter{tx: tx, source: source}, nil
}

// InsertBatch copies obs into the observations table.
// firstSeq is the position of obs[0] within its source file; it keeps the
// file row order recoverable on load.
func (w *sourceWriter) InsertBatch(firstSeq int, obs []models.Observation) error {
	stmt, err := w.tx.Prepare(pq.CopyIn(
		"observations",
		"source",
		"seq",
		"event_market_name",
		"question",
		"token_outcome_name",
		"trade_date",
		"avg_price",
		"daily_volume",
	))
	if err != nil {
		return err
	}

	for i, o := range obs {
		if _, err := stmt.Exec(
			w.source,
			firstSeq+i,
			o.Market,
			o.Question,
			o.Outcome,
			o.TradeDate,
			o.AvgPrice,
			o.DailyVolume,
		); err != nil {
			_ = stmt.Close()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		return err
	}
	return stmt.Close()
}

// Commit records (or updates) the ingestion entry for the source and makes
// the staged rows visible.
func (w *sourceWriter) Commit(rowCount int) error {
	if _, err := w.tx.Exec(`
		INSERT INTO ingestion_log (source, row_count)
		VALUES ($1, $2)
		ON CONFLICT (source)
		DO UPDATE SET row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, w.source, rowCount); err != nil {
		_ = w.tx.Rollback()
		return err
	}
	return w.tx.Commit()
}

func (w *sourceWriter) Rollback() error {
	if err := w.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// LoadObservations returns every stored observation in source/file order.
func (r *observationsRepository) LoadObservations() ([]models.Observation, error) {
	rows, err := r.db.Query(`
		SELECT event_market_name, question, token_outcome_name, trade_date, avg_price, daily_volume
		FROM observations
		ORDER BY source, seq
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Observation
	for rows.Next() {
		var o models.Observation
		var d time.Time
		if err := rows.Scan(&o.Market, &o.Question, &o.Outcome, &d, &o.AvgPrice, &o.DailyVolume); err != nil {
			return nil, err
		}
		y, m, day := d.Date()
		o.TradeDate = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// HasIngestionForSource checks if an ingestion was already recorded for a source file.
func (r *observationsRepository) HasIngestionForSource(source string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE source = $1)`, source).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *observationsRepository) Ping() error {
	return r.db.Ping()
}
