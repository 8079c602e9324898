package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/polypulse/internal/domain/models"
)

// Column names of the prediction-market panel file.
const (
	ColMarket      = "event_market_name"
	ColQuestion    = "question"
	ColOutcome     = "token_outcome_name"
	ColTradeDate   = "trade_date"
	ColAvgPrice    = "avg_price"
	ColDailyVolume = "daily_volume"
)

// requiredColumns are located by name in the header; order and extra
// columns do not matter.
var requiredColumns = []string{
	ColMarket,
	ColQuestion,
	ColOutcome,
	ColTradeDate,
	ColAvgPrice,
	ColDailyVolume,
}

// dateLayouts are tried in order for trade_date. Any time of day is dropped.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// ErrMissingColumn is wrapped by DataFormatError when the header lacks a
// required column.
var ErrMissingColumn = errors.New("missing required column")

// DataFormatError reports a panel file that cannot be loaded: a missing
// required column, or a cell that cannot be parsed. It is fatal at startup.
type DataFormatError struct {
	Source string // file name or other label of the input
	Line   int    // 1-based line number, 0 when not tied to a line
	Field  string // column name involved, if any
	Value  string // offending cell value, if any
	Err    error
}

func (e *DataFormatError) Error() string {
	var b strings.Builder
	b.WriteString("data format error")
	if e.Source != "" {
		b.WriteString(" in ")
		b.WriteString(e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s", e.Field)
		if e.Value != "" {
			fmt.Fprintf(&b, ", value %q", e.Value)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// LoadFile opens a panel CSV file and parses every row of it.
func LoadFile(ctx context.Context, path string) ([]models.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadObservations(ctx, f, filepath.Base(path))
}

// ReadObservations parses a panel CSV stream into observations, in input order.
//
// It fails on:
//   - a header missing any required column
//   - an unparseable trade_date, avg_price or daily_volume cell
//   - a row too short to hold a required column
//   - unrecoverable I/O errors
//
// No row is ever dropped silently: either every row loads or none does.
//
// Parameters:
//   - ctx:    context for cancellation.
//   - r:      CSV input with a header line.
//   - source: label used in error messages (usually the file name).
func ReadObservations(ctx context.Context, r io.Reader, source string) ([]models.Observation, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1 // row length is checked per required column
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, &DataFormatError{Source: source, Line: 1, Err: fmt.Errorf("read header: %w", err)}
	}
	idx, err := columnIndex(header)
	if err != nil {
		var dfe *DataFormatError
		if errors.As(err, &dfe) {
			dfe.Source = source
			dfe.Line = 1
		}
		return nil, err
	}

	var out []models.Observation
	lineNumber := 1 // header already read

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%s: read line after %d: %w", source, lineNumber, err)
		}
		lineNumber++

		obs, err := recordToObservation(rec, idx)
		if err != nil {
			var dfe *DataFormatError
			if errors.As(err, &dfe) {
				dfe.Source = source
				dfe.Line = lineNumber
			}
			return nil, err
		}
		out = append(out, obs)
	}

	return out, nil
}

// columnIndex maps every required column name to its position in header.
// Names are trimmed and a leading UTF-8 BOM is ignored; the first occurrence
// of a duplicated name wins.
func columnIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := pos[name]; !seen {
			pos[name] = i
		}
	}

	idx := make(map[string]int, len(requiredColumns))
	for _, col := range requiredColumns {
		i, ok := pos[col]
		if !ok {
			return nil, &DataFormatError{Field: col, Err: ErrMissingColumn}
		}
		idx[col] = i
	}
	return idx, nil
}

// recordToObservation converts one CSV record into a models.Observation.
// String columns are kept as-is apart from surrounding whitespace.
func recordToObservation(rec []string, idx map[string]int) (models.Observation, error) {
	var o models.Observation

	cell := func(col string) (string, error) {
		i := idx[col]
		if i >= len(rec) {
			return "", &DataFormatError{Field: col, Err: fmt.Errorf("row has %d columns, need at least %d", len(rec), i+1)}
		}
		return strings.TrimSpace(rec[i]), nil
	}

	var err error
	if o.Market, err = cell(ColMarket); err != nil {
		return o, err
	}
	if o.Question, err = cell(ColQuestion); err != nil {
		return o, err
	}
	if o.Outcome, err = cell(ColOutcome); err != nil {
		return o, err
	}

	s, err := cell(ColTradeDate)
	if err != nil {
		return o, err
	}
	if o.TradeDate, err = ParseTradeDate(s); err != nil {
		return o, &DataFormatError{Field: ColTradeDate, Value: s, Err: err}
	}

	if s, err = cell(ColAvgPrice); err != nil {
		return o, err
	}
	if o.AvgPrice, err = parseNumber(s); err != nil {
		return o, &DataFormatError{Field: ColAvgPrice, Value: s, Err: err}
	}

	if s, err = cell(ColDailyVolume); err != nil {
		return o, err
	}
	if o.DailyVolume, err = parseNumber(s); err != nil {
		return o, &DataFormatError{Field: ColDailyVolume, Value: s, Err: err}
	}

	return o, nil
}

// ParseTradeDate parses a trade_date cell into a calendar date at 00:00 UTC.
func ParseTradeDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
