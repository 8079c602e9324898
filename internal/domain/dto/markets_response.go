package dto

// MarketsResponse represents the JSON structure returned by the
// GET /api/v1/markets endpoint. Markets are sorted ascending and unique;
// Default is the market a client should pre-select.
type MarketsResponse struct {
	Markets []string `json:"markets" example:"Fed Hike March,Fed Hold March"`
	Default string   `json:"default" example:"Fed Hike March"`
}
