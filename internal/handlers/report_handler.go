package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/admin/stats ---
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.Stats())
}

// --- GET: /api/admin/analytics ---
func (h *Handler) GetAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.Analytics())
}

// --- GET: /api/admin/reports ---
// With ?start=YYYY-MM-DD&end=YYYY-MM-DD it returns the range totals, otherwise the
// all-time overview with top sellers and the latest sales.
func (h *Handler) GetSalesReport(c *gin.Context) {
	startStr, endStr := c.Query("start"), c.Query("end")
	if startStr == "" && endStr == "" {
		c.JSON(http.StatusOK, h.Admin.Overview())
		return
	}

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		badRequest(c, "Dates must be in YYYY-MM-DD format")
		return
	}
	// Include the whole end day
	end = end.Add(24*time.Hour - time.Nanosecond)

	c.JSON(http.StatusOK, h.Admin.SalesReport(start, end))
}

// --- GET: /api/admin/reports/categories ---
func (h *Handler) GetSalesByCategory(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.SalesByCategory())
}

func (h *Handler) SearchOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.SearchOrders(c.Query("search")))
}

func (h *Handler) SearchUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.SearchUsers(c.Query("search")))
}

// --- GET: /api/admin/orders/:orderId/verify (exit gate scan) ---
func (h *Handler) VerifyExit(c *gin.Context) {
	order, err := h.Admin.VerifyExit(c.Param("orderId"))
	if err != nil {
		writeError(c, "order.verify_exit", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "order": order})
}
