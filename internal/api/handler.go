package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/polypulse/internal/chart"
	"github.com/guttosm/polypulse/internal/domain/dto"
	"github.com/guttosm/polypulse/internal/middleware"
	"github.com/guttosm/polypulse/internal/service"
)

// Handler provides HTTP handlers for market and chart endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Interact with the service layer for chart assembly
//   - Translate domain results into response DTOs
//   - Return structured JSON (or PNG) responses with appropriate HTTP status codes
type Handler struct {
	svc         service.ChartService
	defaultSize chart.RenderOptions
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.ChartService): Service used to list markets and build charts.
//   - defaultSize (chart.RenderOptions): Image size used when a PNG request
//     does not specify one.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(svc service.ChartService, defaultSize chart.RenderOptions) *Handler {
	return &Handler{svc: svc, defaultSize: defaultSize}
}

// GetMarkets handles GET /api/v1/markets requests.
//
// GetMarkets godoc
// @Summary      List markets
// @Description  Returns the sorted, de-duplicated market names and the market to pre-select
// @Tags         markets
// @Produce      json
// @Success      200  {object}  dto.MarketsResponse  "Success"
// @Router       /api/v1/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, dto.MarketsResponse{
		Markets: h.svc.Markets(ctx),
		Default: h.svc.DefaultMarket(ctx),
	})
}

// GetChart handles GET /api/v1/chart requests.
//
// Query Parameters:
//   - market (string, required): Exact market name as listed by /api/v1/markets.
//
// Responses:
//   - 200 OK: ChartResponse. An unknown market returns an empty chart, not an error.
//   - 400 Bad Request: Missing market parameter.
//
// GetChart godoc
// @Summary      Get chart by market
// @Description  Returns one price series per question and the market-wide daily volume
// @Tags         charts
// @Produce      json
// @Param        market  query     string  true  "Market name" example(Fed decision in March)
// @Success      200     {object}  dto.ChartResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Router       /api/v1/chart [get]
func (h *Handler) GetChart(c *gin.Context) {
	// ─── Validate "market" param ──────────────────────────────
	market, ok := requireMarket(c)
	if !ok {
		return
	}

	// ─── Assemble and return response DTO ─────────────────────
	spec := h.svc.Chart(c.Request.Context(), market)
	c.JSON(http.StatusOK, dto.NewChartResponse(spec))
}

// GetChartPNG handles GET /api/v1/chart.png requests.
//
// Query Parameters:
//   - market (string, required): Exact market name.
//   - width, height (int, optional): Image size in pixels.
//
// GetChartPNG godoc
// @Summary      Render chart by market
// @Description  Renders the dual-axis chart of a market as a PNG image
// @Tags         charts
// @Produce      png
// @Param        market  query     string   true   "Market name"
// @Param        width   query     integer  false  "Image width in pixels" minimum(200) maximum(4096)
// @Param        height  query     integer  false  "Image height in pixels" minimum(200) maximum(4096)
// @Success      200     {file}    binary
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500     {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/chart.png [get]
func (h *Handler) GetChartPNG(c *gin.Context) {
	market, ok := requireMarket(c)
	if !ok {
		return
	}

	// ─── Parse optional size params ───────────────────────────
	opts := h.defaultSize
	var err error
	if opts.Width, err = intQuery(c, "width", opts.Width); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid width", err)
		return
	}
	if opts.Height, err = intQuery(c, "height", opts.Height); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid height", err)
		return
	}
	if err := opts.Validate(); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid image size", err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.RenderChart(c.Request.Context(), market, &buf, opts); err != nil {
		if errors.Is(err, chart.ErrInvalidSize) {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid image size", err)
			return
		}
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to render chart", err)
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func requireMarket(c *gin.Context) (string, bool) {
	// Market names are matched verbatim; no trimming or case folding.
	market := c.Query("market")
	if market == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, "market is required", nil)
		return "", false
	}
	return market, true
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
