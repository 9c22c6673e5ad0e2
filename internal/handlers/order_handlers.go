package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopkart/shopkart-api/internal/cart"
	"github.com/shopkart/shopkart-api/internal/middleware"
	"github.com/shopkart/shopkart-api/internal/models"
)

// Admin status actions for PUT /v1/orders/:id/status.
const (
	ActionMarkPaid      = "markPaid"
	ActionMarkDelivered = "markDelivered"
)

const orderColumns = `o.id, o.user_id, o.shipping_address, o.shipping_city, o.shipping_postal_code, o.shipping_country,
	o.payment_method, o.payment_id, o.payment_status, o.payment_update_time, o.payment_email,
	o.items_price, o.tax_price, o.shipping_price, o.total_price,
	o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at, o.updated_at,
	COALESCE(u.name, ''), COALESCE(u.email, '')`

const orderFrom = " FROM orders o LEFT JOIN users u ON u.id = o.user_id"

func scanOrder(row rowScanner) (models.Order, error) {
	var o models.Order
	var payID, payStatus, payTime, payEmail sql.NullString
	var paidAt, deliveredAt sql.NullTime
	err := row.Scan(&o.ID, &o.UserID,
		&o.ShippingAddress.Address, &o.ShippingAddress.City, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.PaymentMethod, &payID, &payStatus, &payTime, &payEmail,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
		&o.IsPaid, &paidAt, &o.IsDelivered, &deliveredAt, &o.CreatedAt, &o.UpdatedAt,
		&o.UserName, &o.UserEmail)
	if err != nil {
		return o, err
	}
	if payID.Valid {
		o.PaymentResult = &models.PaymentResult{
			ID:           payID.String,
			Status:       payStatus.String,
			UpdateTime:   payTime.String,
			EmailAddress: payEmail.String,
		}
	}
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	o.OrderItems = []models.OrderItem{}
	return o, nil
}

func (h *Handlers) orderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := h.DB.QueryContext(ctx,
		"SELECT id, order_id, product_id, name, qty, image, price FROM order_items WHERE order_id = ? ORDER BY id ASC", orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Qty, &it.Image, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (h *Handlers) loadOrder(ctx context.Context, id int64) (models.Order, error) {
	o, err := scanOrder(h.DB.QueryRowContext(ctx, "SELECT "+orderColumns+orderFrom+" WHERE o.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return o, &requestError{Status: http.StatusNotFound, Message: "Order not found"}
		}
		return o, err
	}
	o.OrderItems, err = h.orderItems(ctx, id)
	return o, err
}

// listOrders returns orders newest first. where may be empty.
func (h *Handlers) listOrders(ctx context.Context, withItems bool, where string, args ...any) ([]models.Order, error) {
	rows, err := h.DB.QueryContext(ctx, "SELECT "+orderColumns+orderFrom+where+" ORDER BY o.created_at DESC, o.id DESC", args...)
	if err != nil {
		return nil, err
	}

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Items are fetched after the order rows are closed so a single
	// connection pool does not deadlock.
	if withItems {
		for i := range orders {
			if orders[i].OrderItems, err = h.orderItems(ctx, orders[i].ID); err != nil {
				return nil, err
			}
		}
	}
	return orders, nil
}

// placeOrder validates an order submission against the catalogue, takes the
// stock and stores the order. Prices are taken from the products table and
// the totals recomputed; the client's figures are ignored.
func (h *Handlers) placeOrder(ctx context.Context, userID int64, req cart.OrderRequest) (models.Order, error) {
	if len(req.OrderItems) == 0 {
		return models.Order{}, &requestError{Status: http.StatusBadRequest, Message: "No order items"}
	}
	if !req.ShippingAddress.Complete() {
		return models.Order{}, &requestError{Status: http.StatusBadRequest, Message: "Shipping address is required"}
	}
	method := req.PaymentMethod
	if method == "" {
		method = cart.DefaultPaymentMethod
	}

	// 1. --- Begin Transaction ---
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback() // Safety net

	// 2. --- Price From Catalogue & Take Stock ---
	lines := make([]cart.LineItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		if it.Qty <= 0 {
			return models.Order{}, &requestError{Status: http.StatusBadRequest, Message: "Quantity must be at least 1"}
		}

		var line cart.LineItem
		err := tx.QueryRowContext(ctx, "SELECT id, name, image, price, count_in_stock FROM products WHERE id = ?", it.Product).
			Scan(&line.ProductID, &line.Name, &line.Image, &line.Price, &line.CountInStock)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.Order{}, &requestError{Status: http.StatusNotFound, Message: fmt.Sprintf("Product not found: %d", it.Product)}
			}
			return models.Order{}, fmt.Errorf("load product %d: %w", it.Product, err)
		}
		line.Quantity = it.Qty

		// Conditional decrement instead of row locks so the same statement works on every driver.
		res, err := tx.ExecContext(ctx,
			"UPDATE products SET count_in_stock = count_in_stock - ? WHERE id = ? AND count_in_stock >= ?",
			it.Qty, it.Product, it.Qty)
		if err != nil {
			return models.Order{}, fmt.Errorf("take stock for %d: %w", it.Product, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.Order{}, &requestError{Status: http.StatusConflict, Message: fmt.Sprintf("Not enough stock for %s", line.Name)}
		}

		lines = append(lines, line)
	}
	prices := cart.Totals(lines)

	// 3. --- Insert Order ---
	now := time.Now().UTC()
	order := models.Order{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   method,
		ItemsPrice:      prices.ItemsPrice,
		TaxPrice:        prices.TaxPrice,
		ShippingPrice:   prices.ShippingPrice,
		TotalPrice:      prices.TotalPrice,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, shipping_address, shipping_city, shipping_postal_code, shipping_country,
			payment_method, items_price, tax_price, shipping_price, total_price,
			is_paid, is_delivered, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID, order.ShippingAddress.Address, order.ShippingAddress.City, order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.PaymentMethod, order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice,
		false, false, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	if order.ID, err = res.LastInsertId(); err != nil {
		return models.Order{}, err
	}

	// 4. --- Snapshot Items ---
	order.OrderItems = make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := models.OrderItem{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Qty:       line.Quantity,
			Image:     line.Image,
			Price:     line.Price,
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, name, qty, image, price) VALUES (?, ?, ?, ?, ?, ?)",
			item.OrderID, item.ProductID, item.Name, item.Qty, item.Image, item.Price)
		if err != nil {
			return models.Order{}, fmt.Errorf("insert order item: %w", err)
		}
		item.ID, _ = res.LastInsertId()
		order.OrderItems = append(order.OrderItems, item)
	}

	// 5. --- Commit ---
	if err := tx.Commit(); err != nil {
		return models.Order{}, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

// CreateOrder handles POST /v1/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req cart.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := bindingError(err, "")
		switch {
		case len(req.OrderItems) == 0:
			msg = "No order items"
		case addressFieldFailed(err):
			msg = "Shipping address is required"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	order, err := h.placeOrder(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// addressFieldFailed reports whether binding failed on a shipping address field.
func addressFieldFailed(err error) bool {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	for _, fe := range ve {
		if strings.Contains(fe.StructNamespace(), ".ShippingAddress.") {
			return true
		}
	}
	return false
}

// GetMyOrders handles GET /v1/orders/myorders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	orders, err := h.listOrders(c.Request.Context(), true, " WHERE o.user_id = ?", middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// orderForUser loads an order and checks the caller may see it.
// ownerOnly refuses admins who do not own the order.
func (h *Handlers) orderForUser(c *gin.Context, ownerOnly bool) (models.Order, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return models.Order{}, false
	}
	order, err := h.loadOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Database error")
		return models.Order{}, false
	}

	isOwner := order.UserID == middleware.UserID(c)
	if !isOwner && (ownerOnly || !middleware.IsAdmin(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this order"})
		return models.Order{}, false
	}
	return order, true
}

// GetOrderByID handles GET /v1/orders/:id (owner or admin).
func (h *Handlers) GetOrderByID(c *gin.Context) {
	order, ok := h.orderForUser(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// PayOrder handles PUT /v1/orders/:id/pay. The body is the payment
// provider's result as relayed by the client.
func (h *Handlers) PayOrder(c *gin.Context) {
	order, ok := h.orderForUser(c, true)
	if !ok {
		return
	}

	var result models.PaymentResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "")})
		return
	}
	if order.IsPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already paid"})
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()
	_, err := h.DB.ExecContext(ctx, `
		UPDATE orders SET is_paid = ?, paid_at = ?, payment_id = ?, payment_status = ?,
			payment_update_time = ?, payment_email = ?, updated_at = ?
		WHERE id = ?`,
		true, now, result.ID, result.Status, result.UpdateTime, result.EmailAddress, now, order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	updated, err := h.loadOrder(ctx, order.ID)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteOrder handles DELETE /v1/orders/:id. Only the owner can cancel, and
// only while the order is neither paid nor delivered. Stock is given back.
func (h *Handlers) DeleteOrder(c *gin.Context) {
	order, ok := h.orderForUser(c, true)
	if !ok {
		return
	}
	if order.IsPaid || order.IsDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete an order that has been paid or delivered"})
		return
	}

	ctx := c.Request.Context()
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	for _, it := range order.OrderItems {
		if _, err := tx.ExecContext(ctx, "UPDATE products SET count_in_stock = count_in_stock + ? WHERE id = ?", it.Qty, it.ProductID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restock products"})
			return
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = ?", order.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order items"})
		return
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", order.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order removed"})
}

// --- Admin Order Routes ---

// GetAllOrders (Admin Only) handles GET /v1/orders
func (h *Handlers) GetAllOrders(c *gin.Context) {
	orders, err := h.listOrders(c.Request.Context(), true, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

type OrderStatusInput struct {
	Action string `json:"action" binding:"required,oneof=markPaid markDelivered"`
}

// UpdateOrderStatus (Admin Only) handles PUT /v1/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input OrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be markPaid or markDelivered"})
		return
	}

	ctx := c.Request.Context()
	order, err := h.loadOrder(ctx, id)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}

	now := time.Now().UTC()
	switch input.Action {
	case ActionMarkPaid:
		if order.IsPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already paid"})
			return
		}
		_, err = h.DB.ExecContext(ctx, "UPDATE orders SET is_paid = ?, paid_at = ?, updated_at = ? WHERE id = ?", true, now, now, id)
	case ActionMarkDelivered:
		if order.IsDelivered {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already delivered"})
			return
		}
		_, err = h.DB.ExecContext(ctx, "UPDATE orders SET is_delivered = ?, delivered_at = ?, updated_at = ? WHERE id = ?", true, now, now, id)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	updated, err := h.loadOrder(ctx, id)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// GetPayPalConfig handles GET /v1/config/paypal
func (h *Handlers) GetPayPalConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clientId": h.Config.PayPalClientID})
}
