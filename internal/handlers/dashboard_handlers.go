package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopkart/shopkart-api/internal/dashboard"
)

//
// --- Admin Dashboard Stats ---
//

// GetAdminStats returns KPI data for the admin dashboard
// GET /v1/admin/dashboard-stats
func (h *Handlers) GetAdminStats(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. Orders (without items, the dashboard only needs the headers)
	orders, err := h.listOrders(ctx, false, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	// 2. Products
	products, err := h.queryProducts(ctx, "SELECT "+productColumns+" FROM products ORDER BY id ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	// 3. Users
	users, err := h.listUsers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, dashboard.Compute(orders, products, users, time.Now().UTC()))
}
