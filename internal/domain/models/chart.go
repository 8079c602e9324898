package models

import "time"

// VolumeLegend is the legend label of the market-wide volume series.
const VolumeLegend = "Volume"

// ChartSpec is the dual-axis chart assembled for one market.
//
// It is rebuilt from scratch on every selection and never mutated afterwards.
// An unknown market yields a spec with no price series and an empty volume
// series, which is still a valid chart.
type ChartSpec struct {
	Market string
	Title  string
	Prices []PriceSeries
	Volume VolumeSeries
	Layout Layout
}

// IsEmpty reports whether the spec carries no data points at all.
func (c ChartSpec) IsEmpty() bool {
	return len(c.Prices) == 0 && len(c.Volume.Points) == 0
}

// PriceSeries is the price line of one question, sorted by date.
type PriceSeries struct {
	Question string
	Points   []PricePoint
}

type PricePoint struct {
	Date  time.Time
	Price float64
}

// VolumeSeries holds one point per distinct date: the total traded size
// across every question of the market on that date.
type VolumeSeries struct {
	Name   string
	Points []VolumePoint
}

type VolumePoint struct {
	Date   time.Time
	Volume float64
}

// Layout describes the axes and legend of the chart.
type Layout struct {
	XAxis  Axis
	YAxis  Axis
	YAxis2 Axis
	Legend Legend
}

// Axis describes one chart axis. Min/Max are nil for auto-ranged axes.
//
// Overlaying names the axis this one is drawn over ("y" for the volume
// axis), Side is "left" or "right".
type Axis struct {
	ID         string
	Title      string
	Min        *float64
	Max        *float64
	Side       string
	Overlaying string
	ShowGrid   bool
}

// Legend lists one entry per price series followed by the volume entry.
type Legend struct {
	Orientation string
	Entries     []string
}
