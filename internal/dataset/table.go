// Package dataset holds the prepared, read-only panel of "yes"-token
// observations that every chart is assembled from.
package dataset

import (
	"sort"
	"strings"

	"github.com/guttosm/polypulse/internal/domain/models"
)

// yesPrefix selects the outcome tokens kept for analysis. The comparison is
// case-insensitive, so "Yes", "YES" and "yes - 25bps" all match.
const yesPrefix = "yes"

// Table is the prepared dataset. It is built once by Prepare and never
// mutated afterwards, so any number of goroutines may read it concurrently.
// Every accessor returns copies.
type Table struct {
	rows    []models.Observation
	byMkt   map[string][]int
	markets []string
}

// Prepare builds the Table from raw observations.
//
// Behavior:
//   - Keeps only rows whose outcome, lowercased, starts with "yes".
//   - Preserves every other field and the input order of the kept rows.
//   - Copies its input; later changes to rows do not affect the Table.
//
// An input without any "yes" row yields an empty Table, not an error.
func Prepare(rows []models.Observation) *Table {
	t := &Table{byMkt: make(map[string][]int)}

	for _, r := range rows {
		if !IsYesOutcome(r.Outcome) {
			continue
		}
		if _, ok := t.byMkt[r.Market]; !ok {
			t.markets = append(t.markets, r.Market)
		}
		t.byMkt[r.Market] = append(t.byMkt[r.Market], len(t.rows))
		t.rows = append(t.rows, r)
	}

	sort.Strings(t.markets)
	return t
}

// IsYesOutcome reports whether outcome names a "yes" token.
func IsYesOutcome(outcome string) bool {
	return strings.HasPrefix(strings.ToLower(outcome), yesPrefix)
}

// Len returns the number of retained rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Markets returns the distinct market names, sorted ascending.
func (t *Table) Markets() []string {
	if t == nil {
		return []string{}
	}
	return append([]string{}, t.markets...)
}

// DefaultMarket is the market of the first retained row, the one a
// selection control should start on. It is "" for an empty Table.
func (t *Table) DefaultMarket() string {
	if t.Len() == 0 {
		return ""
	}
	return t.rows[0].Market
}

// HasMarket reports whether market has at least one retained row.
// The match is exact and case-sensitive.
func (t *Table) HasMarket(market string) bool {
	if t == nil {
		return false
	}
	_, ok := t.byMkt[market]
	return ok
}

// MarketRows returns a copy of the rows of market in input order, or nil
// when the market is unknown.
func (t *Table) MarketRows(market string) []models.Observation {
	if t == nil {
		return nil
	}
	idx, ok := t.byMkt[market]
	if !ok {
		return nil
	}
	out := make([]models.Observation, len(idx))
	for i, j := range idx {
		out[i] = t.rows[j]
	}
	return out
}
