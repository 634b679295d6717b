package handlers

import (
	"net/http"
	"strconv"

	"webstore/internal/models"
	"webstore/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports services.ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

func (h *ReportHandler) DailyEarnings(c *gin.Context) {
	report, err := h.reports.DailyEarnings(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) MonthlyEarnings(c *gin.Context) {
	year, ok := optionalIntQuery(c, "year")
	if !ok {
		return
	}
	month, ok := optionalIntQuery(c, "month")
	if !ok {
		return
	}
	report, err := h.reports.MonthlyEarnings(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) RangeEarnings(c *gin.Context) {
	report, err := h.reports.RangeEarnings(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) TopSellingProducts(c *gin.Context) {
	limit, ok := intQuery(c, "limit", services.DefaultTopSellerCap)
	if !ok {
		return
	}
	products, err := h.reports.TopSellingProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"top_products": products,
		"count":        len(products),
	})
}

func (h *ReportHandler) SalesByCategory(c *gin.Context) {
	rows, err := h.reports.SalesByCategory(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales_by_category": dimensionRows("category", rows)})
}

func (h *ReportHandler) SalesByBrand(c *gin.Context) {
	rows, err := h.reports.SalesByBrand(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales_by_brand": dimensionRows("brand", rows)})
}

func (h *ReportHandler) OrderStatusSummary(c *gin.Context) {
	summary, err := h.reports.OrderStatusSummary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_status_summary": summary})
}

// dimensionRows names the grouping column after the dimension, so category
// sales read {"category": ..., "total_quantity_sold": ..., "total_revenue": ...}.
func dimensionRows(dimension string, rows []models.DimensionSales) []gin.H {
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			dimension:             row.Name,
			"total_quantity_sold": row.TotalQuantity,
			"total_revenue":       row.TotalRevenue,
		})
	}
	return out
}

func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	value, ok := optionalIntQuery(c, name)
	if !ok {
		return 0, false
	}
	if value == nil {
		return fallback, true
	}
	return *value, true
}

// optionalIntQuery returns nil when the parameter is absent or empty.
func optionalIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "Invalid "+name)
		return nil, false
	}
	return &value, true
}
