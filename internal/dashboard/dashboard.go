// Package dashboard aggregates the admin dashboard numbers from lists already
// fetched from the database.
package dashboard

import (
	"sort"
	"time"

	"github.com/shopkart/shopkart-api/internal/cart"
	"github.com/shopkart/shopkart-api/internal/models"
)

// RecentWindow is how far back an order still counts as recent.
const RecentWindow = 7 * 24 * time.Hour

// ListSize caps the recent-order and low-stock lists.
const ListSize = 5

// Stats is the payload of GET /v1/admin/dashboard-stats.
type Stats struct {
	TotalOrders      int     `json:"totalOrders"`
	TotalProducts    int     `json:"totalProducts"`
	TotalUsers       int     `json:"totalUsers"`
	TotalRevenue     float64 `json:"totalRevenue"`
	RecentOrders     int     `json:"recentOrders"`
	PendingOrders    int     `json:"pendingOrders"`
	LowStockProducts int     `json:"lowStockProducts"`

	LatestOrders  []models.Order   `json:"recentOrdersList"`
	LowStockItems []models.Product `json:"lowStockProductsList"`
}

// Compute builds the dashboard from full order, product and user lists.
// Revenue only counts paid orders.
func Compute(orders []models.Order, products []models.Product, users []models.User, now time.Time) Stats {
	stats := Stats{
		TotalOrders:   len(orders),
		TotalProducts: len(products),
		TotalUsers:    len(users),
		LatestOrders:  []models.Order{},
		LowStockItems: []models.Product{},
	}

	// 1. --- Orders ---
	cutoff := now.Add(-RecentWindow)
	var revenue float64
	for _, o := range orders {
		if o.IsPaid {
			revenue += o.TotalPrice
		}
		if !o.CreatedAt.Before(cutoff) {
			stats.RecentOrders++
		}
		if !o.IsDelivered {
			stats.PendingOrders++
		}
	}
	stats.TotalRevenue = cart.Round2(revenue)

	latest := append([]models.Order(nil), orders...)
	sort.SliceStable(latest, func(i, j int) bool {
		return latest[i].CreatedAt.After(latest[j].CreatedAt)
	})
	if len(latest) > ListSize {
		latest = latest[:ListSize]
	}
	stats.LatestOrders = append(stats.LatestOrders, latest...)

	// 2. --- Products ---
	var low []models.Product
	for _, p := range products {
		if p.CountInStock < models.LowStockThreshold {
			low = append(low, p)
		}
	}
	stats.LowStockProducts = len(low)

	// First five in fetch order.
	if len(low) > ListSize {
		low = low[:ListSize]
	}
	stats.LowStockItems = append(stats.LowStockItems, low...)

	return stats
}
