package dashboard

import (
	"testing"
	"time"

	"github.com/shopkart/shopkart-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Empty(t *testing.T) {
	stats := Compute(nil, nil, nil, time.Now())

	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.TotalRevenue)
	assert.NotNil(t, stats.LatestOrders)
	assert.NotNil(t, stats.LowStockItems)
}

func TestCompute_Orders(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: 1, TotalPrice: 100.10, IsPaid: true, IsDelivered: true, CreatedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: 2, TotalPrice: 50.11, IsPaid: true, CreatedAt: now.Add(-2 * 24 * time.Hour)},
		{ID: 3, TotalPrice: 999, IsPaid: false, CreatedAt: now.Add(-time.Hour)},
		{ID: 4, TotalPrice: 10, IsPaid: false, IsDelivered: true, CreatedAt: now.Add(-RecentWindow)},
	}

	stats := Compute(orders, nil, []models.User{{ID: 1}, {ID: 2}}, now)

	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 150.21, stats.TotalRevenue)
	assert.Equal(t, 3, stats.RecentOrders, "the window boundary is inclusive")
	assert.Equal(t, 2, stats.PendingOrders)

	require.Len(t, stats.LatestOrders, 4)
	assert.Equal(t, int64(3), stats.LatestOrders[0].ID)
	assert.Equal(t, int64(1), stats.LatestOrders[3].ID)
}

func TestCompute_LatestOrdersCapped(t *testing.T) {
	now := time.Now()
	var orders []models.Order
	for i := 0; i < 8; i++ {
		orders = append(orders, models.Order{ID: int64(i + 1), CreatedAt: now.Add(time.Duration(i) * time.Minute)})
	}

	stats := Compute(orders, nil, nil, now)

	require.Len(t, stats.LatestOrders, ListSize)
	assert.Equal(t, int64(8), stats.LatestOrders[0].ID)
	assert.Equal(t, int64(8), orders[7].ID, "input slice is not reordered")
}

func TestCompute_LowStock(t *testing.T) {
	products := []models.Product{
		{ID: 1, CountInStock: 50},
		{ID: 2, CountInStock: 9},
		{ID: 3, CountInStock: 0},
		{ID: 4, CountInStock: 10},
		{ID: 5, CountInStock: 3},
	}

	stats := Compute(nil, products, nil, time.Now())

	assert.Equal(t, 5, stats.TotalProducts)
	assert.Equal(t, 3, stats.LowStockProducts)
	require.Len(t, stats.LowStockItems, 3)
	assert.Equal(t, []int64{2, 3, 5}, []int64{stats.LowStockItems[0].ID, stats.LowStockItems[1].ID, stats.LowStockItems[2].ID})
}

func TestCompute_LowStockKeepsFetchOrder(t *testing.T) {
	var products []models.Product
	for i, stock := range []int{8, 1, 50, 6, 0, 9, 2} {
		products = append(products, models.Product{ID: int64(i + 1), CountInStock: stock})
	}

	stats := Compute(nil, products, nil, time.Now())

	assert.Equal(t, 6, stats.LowStockProducts)
	require.Len(t, stats.LowStockItems, ListSize)
	var ids []int64
	for _, p := range stats.LowStockItems {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 2, 4, 5, 6}, ids)
}

func TestCompute_RevenueRoundsFromExactValue(t *testing.T) {
	orders := []models.Order{
		{ID: 1, TotalPrice: 0.1, IsPaid: true},
		{ID: 2, TotalPrice: 0.2, IsPaid: true},
		{ID: 3, TotalPrice: 1.005, IsPaid: true},
	}

	stats := Compute(orders, nil, nil, time.Now())

	assert.Equal(t, 1.3, stats.TotalRevenue)
}
