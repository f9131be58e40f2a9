// item360-backend/internal/api/handlers/po_handler.go
package handlers

import (
	"net/http"

	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/erpmco/item360-backend/internal/service"
	"github.com/gin-gonic/gin"
)

type POHandler struct {
	exceptionService *service.ExceptionScanService
}

func NewPOHandler(exceptionService *service.ExceptionScanService) *POHandler {
	return &POHandler{exceptionService: exceptionService}
}

// ScanExceptions evaluates every line of a purchase order and returns one
// result row per line, flagged or not.
func (h *POHandler) ScanExceptions(c *gin.Context) {
	query := domain.ScanQuery{
		POName:          c.Param("po_name"),
		ConsumptionDays: parseIntOrZero(c.Query("consumption_days")),
	}
	if v := parseOptionalFloat(c.Query("price_var_thresh_pct")); v != nil {
		query.PriceVarThreshPct = *v
	}
	if v := parseOptionalFloat(c.Query("cover_overstock_days")); v != nil {
		query.CoverOverstockDays = *v
	}

	rows, err := h.exceptionService.ScanPOExceptions(c.Request.Context(), query)
	if err != nil {
		writeError(c, err, "failed to scan purchase order")
		return
	}

	c.JSON(http.StatusOK, rows)
}
