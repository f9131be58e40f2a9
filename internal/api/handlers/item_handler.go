// item360-backend/internal/api/handlers/item_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ItemHandler struct {
	overviewService   *service.ItemOverviewService
	allocationService *service.AllocationService
}

func NewItemHandler(overviewService *service.ItemOverviewService, allocationService *service.AllocationService) *ItemHandler {
	return &ItemHandler{
		overviewService:   overviewService,
		allocationService: allocationService,
	}
}

// GetOverview returns the aggregated purchasing/stock snapshot for one item.
func (h *ItemHandler) GetOverview(c *gin.Context) {
	query := domain.OverviewQuery{
		Company:            c.Query("company"),
		Branch:             c.Query("branch"),
		ItemCode:           c.Param("item_code"),
		Supplier:           c.Query("supplier"),
		Warehouse:          c.Query("warehouse"),
		ConsumptionDays:    parseIntOrZero(c.Query("consumption_days")),
		HistoryLimit:       parseIntOrZero(c.Query("history_limit")),
		LeadTimeReceipts:   parseIntOrZero(c.Query("lead_time_receipts")),
		POName:             c.Query("po_name"),
		POUOM:              c.Query("po_uom"),
		POBaseRate:         parseOptionalFloat(c.Query("po_base_rate")),
		POConversionFactor: parseOptionalFloat(c.Query("po_conversion_factor")),
	}
	if v := parseOptionalFloat(c.Query("price_var_thresh_pct")); v != nil {
		query.PriceVarThreshPct = *v
	}
	if v := parseOptionalFloat(c.Query("cover_overstock_days")); v != nil {
		query.CoverOverstockDays = *v
	}

	overview, err := h.overviewService.ComputeItemOverview(c.Request.Context(), query)
	if err != nil {
		writeError(c, err, "failed to compute item overview")
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetTotals returns stock, allocation and remaining quantity for one
// item/warehouse pair.
func (h *ItemHandler) GetTotals(c *gin.Context) {
	itemCode := c.Param("item_code")
	warehouse := c.Query("warehouse")

	totals, err := h.allocationService.GetItemTotals(c.Request.Context(), itemCode, warehouse)
	if err != nil {
		writeError(c, err, "failed to fetch item totals")
		return
	}

	c.JSON(http.StatusOK, totals)
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

// parseIntOrZero keeps whatever the client sent, including negatives, so
// the service can reject out-of-range values. Only absent or unparseable
// input falls back to zero (meaning "use the configured default").
func parseIntOrZero(value string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return v
	}
	return 0
}

func parseOptionalFloat(value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &v
}
