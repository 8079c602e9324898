package service

import (
	"context"
	"io"

	"github.com/guttosm/polypulse/internal/chart"
	"github.com/guttosm/polypulse/internal/dataset"
	"github.com/guttosm/polypulse/internal/domain/models"
	"github.com/guttosm/polypulse/internal/logger"
)

// ChartService defines business logic for market selection and chart building.
// This decouples HTTP handlers from the prepared dataset.
type ChartService interface {
	Markets(ctx context.Context) []string
	DefaultMarket(ctx context.Context) string
	Chart(ctx context.Context, market string) models.ChartSpec
	RenderChart(ctx context.Context, market string, w io.Writer, opts chart.RenderOptions) error
}

type chartService struct {
	table *dataset.Table
}

// NewChartService wraps a prepared table. The table is only ever read.
func NewChartService(table *dataset.Table) ChartService {
	return &chartService{table: table}
}

func (s *chartService) Markets(_ context.Context) []string {
	return s.table.Markets()
}

func (s *chartService) DefaultMarket(_ context.Context) string {
	return s.table.DefaultMarket()
}

func (s *chartService) Chart(_ context.Context, market string) models.ChartSpec {
	return s.assemble(market)
}

func (s *chartService) RenderChart(ctx context.Context, market string, w io.Writer, opts chart.RenderOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chart.RenderPNG(s.assemble(market), w, opts)
}

// assemble builds the chart of market. Unknown markets still get an (empty)
// chart; they are only logged.
func (s *chartService) assemble(market string) models.ChartSpec {
	if !s.table.HasMarket(market) {
		logger.Component("chart").Debug().Str("market", market).Msg("unknown market")
	}
	return chart.Assemble(s.table, market)
}
