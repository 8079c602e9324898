package chart

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/guttosm/polypulse/internal/domain/models"
)

// Render size limits accepted by RenderPNG.
const (
	DefaultWidth  = 1024
	DefaultHeight = 576
	MinSize       = 200
	MaxSize       = 4096
)

// ErrInvalidSize is returned for a width or height outside [MinSize, MaxSize].
var ErrInvalidSize = errors.New("chart size out of range")

// RenderOptions controls the rendered image.
type RenderOptions struct {
	Width  int
	Height int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Validate checks the requested size. Zero means "use the default".
func (o RenderOptions) Validate() error {
	o = o.withDefaults()
	if o.Width < MinSize || o.Width > MaxSize || o.Height < MinSize || o.Height > MaxSize {
		return ErrInvalidSize
	}
	return nil
}

// halfDay pads the date axis so a chart with a single date still has a
// non-zero x range.
const halfDay = 12 * time.Hour

var volumeColor = drawing.ColorFromHex("808080")

// RenderPNG draws spec as a PNG image into w.
//
// Price series are lines on the primary axis, fixed to [0,1]. Volume is a
// filled series on the secondary axis ranged from 0 to the largest daily
// total. An empty spec renders a blank placeholder of the requested size.
func RenderPNG(spec models.ChartSpec, w io.Writer, opts RenderOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	opts = opts.withDefaults()

	if spec.IsEmpty() {
		return renderPlaceholder(w, opts)
	}

	series := make([]gochart.Series, 0, len(spec.Prices)+1)
	for i, s := range spec.Prices {
		xs := make([]time.Time, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			xs = append(xs, p.Date)
			ys = append(ys, p.Price)
		}
		series = append(series, gochart.TimeSeries{
			Name: s.Question,
			Style: gochart.Style{
				StrokeColor: gochart.GetDefaultColor(i),
				StrokeWidth: 2,
			},
			YAxis:   gochart.YAxisPrimary,
			XValues: xs,
			YValues: ys,
		})
	}

	vx := make([]time.Time, 0, len(spec.Volume.Points))
	vy := make([]float64, 0, len(spec.Volume.Points))
	maxVol := 0.0
	for _, p := range spec.Volume.Points {
		vx = append(vx, p.Date)
		vy = append(vy, p.Volume)
		maxVol = math.Max(maxVol, p.Volume)
	}
	if len(vx) > 0 {
		series = append(series, gochart.TimeSeries{
			Name: spec.Volume.Name,
			Style: gochart.Style{
				StrokeColor: volumeColor,
				FillColor:   volumeColor.WithAlpha(150),
				StrokeWidth: 1,
			},
			YAxis:   gochart.YAxisSecondary,
			XValues: vx,
			YValues: vy,
		})
	}
	if maxVol <= 0 {
		maxVol = 1
	}

	minDate, maxDate := dateBounds(spec)

	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           spec.Layout.XAxis.Title,
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01-02"),
			Range: &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(minDate.Add(-halfDay)),
				Max: gochart.TimeToFloat64(maxDate.Add(halfDay)),
			},
		},
		YAxis: gochart.YAxis{
			Name:  spec.Layout.YAxis.Title,
			Range: &gochart.ContinuousRange{Min: rangeOr(spec.Layout.YAxis.Min, 0), Max: rangeOr(spec.Layout.YAxis.Max, 1)},
			GridMajorStyle: gochart.Style{
				StrokeColor: drawing.ColorFromHex("e0e0e0"),
				StrokeWidth: 1,
			},
		},
		YAxisSecondary: gochart.YAxis{
			Name:  spec.Layout.YAxis2.Title,
			Range: &gochart.ContinuousRange{Min: 0, Max: maxVol * 1.1},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	return ch.Render(gochart.PNG, w)
}

func dateBounds(spec models.ChartSpec) (time.Time, time.Time) {
	var lo, hi time.Time
	see := func(d time.Time) {
		if lo.IsZero() || d.Before(lo) {
			lo = d
		}
		if hi.IsZero() || d.After(hi) {
			hi = d
		}
	}
	for _, s := range spec.Prices {
		for _, p := range s.Points {
			see(p.Date)
		}
	}
	for _, p := range spec.Volume.Points {
		see(p.Date)
	}
	return lo, hi
}

func rangeOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// renderPlaceholder writes a plain white image so clients always get a
// picture back, even for a market without data.
func renderPlaceholder(w io.Writer, opts RenderOptions) error {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return png.Encode(w, img)
}
