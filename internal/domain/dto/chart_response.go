package dto

import (
	"time"

	"github.com/guttosm/polypulse/internal/domain/models"
)

// dateLayout is the wire format of every date in chart responses.
const dateLayout = "2006-01-02"

// ChartResponse represents the JSON structure returned by the
// GET /api/v1/chart endpoint.
//
// Fields match the API contract and may differ from internal domain models.
type ChartResponse struct {
	Market string           `json:"market" example:"Fed decision in March"`
	Title  string           `json:"title" example:"Price Trends for 'Fed decision in March'"`
	Prices []PriceSeriesDTO `json:"prices"`
	Volume VolumeSeriesDTO  `json:"volume"`
	Layout LayoutDTO        `json:"layout"`
	Empty  bool             `json:"empty"`
}

type PriceSeriesDTO struct {
	Name   string          `json:"name" example:"Will the Fed hike 25bps?"`
	Points []PricePointDTO `json:"points"`
}

type PricePointDTO struct {
	Date  string  `json:"date" example:"2024-01-01"`
	Price float64 `json:"price" example:"0.42"`
}

type VolumeSeriesDTO struct {
	Name   string           `json:"name" example:"Volume"`
	Axis   string           `json:"axis" example:"y2"`
	Points []VolumePointDTO `json:"points"`
}

type VolumePointDTO struct {
	Date   string  `json:"date" example:"2024-01-01"`
	Volume float64 `json:"volume" example:"130"`
}

type AxisDTO struct {
	Title      string    `json:"title"`
	Range      []float64 `json:"range,omitempty"`
	Side       string    `json:"side,omitempty"`
	Overlaying string    `json:"overlaying,omitempty"`
	ShowGrid   bool      `json:"showgrid"`
}

type LayoutDTO struct {
	XAxis             AxisDTO  `json:"xaxis"`
	YAxis             AxisDTO  `json:"yaxis"`
	YAxis2            AxisDTO  `json:"yaxis2"`
	LegendOrientation string   `json:"legend_orientation"`
	Legend            []string `json:"legend"`
}

// NewChartResponse maps a domain ChartSpec onto the API contract.
// Series slices are always non-nil so empty charts encode as [] not null.
func NewChartResponse(spec models.ChartSpec) ChartResponse {
	prices := make([]PriceSeriesDTO, 0, len(spec.Prices))
	for _, s := range spec.Prices {
		pts := make([]PricePointDTO, 0, len(s.Points))
		for _, p := range s.Points {
			pts = append(pts, PricePointDTO{Date: formatDate(p.Date), Price: p.Price})
		}
		prices = append(prices, PriceSeriesDTO{Name: s.Question, Points: pts})
	}

	vol := make([]VolumePointDTO, 0, len(spec.Volume.Points))
	for _, p := range spec.Volume.Points {
		vol = append(vol, VolumePointDTO{Date: formatDate(p.Date), Volume: p.Volume})
	}

	legend := append([]string{}, spec.Layout.Legend.Entries...)

	return ChartResponse{
		Market: spec.Market,
		Title:  spec.Title,
		Prices: prices,
		Volume: VolumeSeriesDTO{Name: spec.Volume.Name, Axis: spec.Layout.YAxis2.ID, Points: vol},
		Layout: LayoutDTO{
			XAxis:             newAxisDTO(spec.Layout.XAxis),
			YAxis:             newAxisDTO(spec.Layout.YAxis),
			YAxis2:            newAxisDTO(spec.Layout.YAxis2),
			LegendOrientation: spec.Layout.Legend.Orientation,
			Legend:            legend,
		},
		Empty: spec.IsEmpty(),
	}
}

func newAxisDTO(a models.Axis) AxisDTO {
	out := AxisDTO{
		Title:      a.Title,
		Side:       a.Side,
		Overlaying: a.Overlaying,
		ShowGrid:   a.ShowGrid,
	}
	if a.Min != nil && a.Max != nil {
		out.Range = []float64{*a.Min, *a.Max}
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
