package models

import "time"

// Observation represents a single row of the prediction-market panel file.
// Columns are matched by name, so the field order below carries no meaning.
//
// Columns:
//   - event_market_name  → Market
//   - question           → Question
//   - token_outcome_name → Outcome
//   - trade_date         → TradeDate (calendar date, 00:00 UTC)
//   - avg_price          → AvgPrice (expected range [0,1])
//   - daily_volume       → DailyVolume
type Observation struct {
	Market      string    `json:"event_market_name"`
	Question    string    `json:"question"`
	Outcome     string    `json:"token_outcome_name"`
	TradeDate   time.Time `json:"trade_date"`
	AvgPrice    float64   `json:"avg_price"`
	DailyVolume float64   `json:"daily_volume"`
}
