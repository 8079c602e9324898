// Package chart turns a market selection into a dual-axis chart: one price
// line per question on a [0,1] axis and the market's daily traded volume on
// an independent secondary axis.
package chart

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/polypulse/internal/dataset"
	"github.com/guttosm/polypulse/internal/domain/models"
)

// Axis ids follow the usual plotting convention: "y" is the primary axis,
// "y2" the secondary one drawn over it.
const (
	axisX  = "x"
	axisY  = "y"
	axisY2 = "y2"
)

// Assemble builds the chart of market from table.
//
// Behavior:
//   - Selects rows whose market equals market exactly (case-sensitive).
//   - One price series per distinct question, in order of first appearance,
//     with points stably sorted by date. Duplicate dates are kept.
//   - One volume point per distinct date: the sum of daily_volume over all
//     questions of the market on that date, sorted by date.
//   - An unknown market yields a valid empty chart, never an error.
//
// Assemble is pure: equal inputs give deep-equal outputs.
func Assemble(table *dataset.Table, market string) models.ChartSpec {
	rows := table.MarketRows(market)

	prices := priceSeries(rows)
	volume := models.VolumeSeries{Name: models.VolumeLegend, Points: volumePoints(rows)}

	return models.ChartSpec{
		Market: market,
		Title:  Title(market),
		Prices: prices,
		Volume: volume,
		Layout: layout(prices),
	}
}

// Title is the chart title of market.
func Title(market string) string {
	return fmt.Sprintf("Price Trends for '%s'", market)
}

func priceSeries(rows []models.Observation) []models.PriceSeries {
	if len(rows) == 0 {
		return []models.PriceSeries{}
	}

	pos := make(map[string]int)
	out := make([]models.PriceSeries, 0)
	for _, r := range rows {
		i, ok := pos[r.Question]
		if !ok {
			i = len(out)
			pos[r.Question] = i
			out = append(out, models.PriceSeries{Question: r.Question})
		}
		out[i].Points = append(out[i].Points, models.PricePoint{Date: r.TradeDate, Price: r.AvgPrice})
	}

	for i := range out {
		pts := out[i].Points
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].Date.Before(pts[b].Date) })
	}
	return out
}

// volumePoints sums volume per date with decimal arithmetic so the totals do
// not depend on the order the rows are added in.
func volumePoints(rows []models.Observation) []models.VolumePoint {
	sums := make(map[time.Time]decimal.Decimal)
	var dates []time.Time
	for _, r := range rows {
		d := r.TradeDate
		if _, ok := sums[d]; !ok {
			dates = append(dates, d)
		}
		sums[d] = sums[d].Add(decimal.NewFromFloat(r.DailyVolume))
	}

	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })

	out := make([]models.VolumePoint, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.VolumePoint{Date: d, Volume: sums[d].InexactFloat64()})
	}
	return out
}

func layout(prices []models.PriceSeries) models.Layout {
	legend := make([]string, 0, len(prices)+1)
	for _, s := range prices {
		legend = append(legend, s.Question)
	}
	legend = append(legend, models.VolumeLegend)

	return models.Layout{
		XAxis: models.Axis{ID: axisX, Title: "Date", ShowGrid: true},
		YAxis: models.Axis{
			ID:       axisY,
			Title:    "Price",
			Min:      float64Ptr(0),
			Max:      float64Ptr(1),
			Side:     "left",
			ShowGrid: true,
		},
		YAxis2: models.Axis{
			ID:         axisY2,
			Title:      models.VolumeLegend,
			Side:       "right",
			Overlaying: axisY,
			ShowGrid:   false,
		},
		Legend: models.Legend{Orientation: "h", Entries: legend},
	}
}

func float64Ptr(v float64) *float64 { return &v }
