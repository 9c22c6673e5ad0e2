package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopkart/shopkart-api/internal/cart"
	"github.com/shopkart/shopkart-api/internal/middleware"
)

//
// --- Cart Handlers (server-hosted cart ledgers) ---
//

// CartResponse is a cart's state plus its freshly computed totals.
type CartResponse struct {
	ID string `json:"cartId"`
	cart.State
	cart.Prices
}

func cartResponse(l *cart.Ledger) CartResponse {
	return CartResponse{ID: l.ID(), State: l.State(), Prices: l.Totals()}
}

// openLedger rehydrates the cart named by :cartId. It writes the error itself.
func (h *Handlers) openLedger(c *gin.Context) (*cart.Ledger, bool) {
	id := c.Param("cartId")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart ID"})
		return nil, false
	}
	l, err := cart.Open(c.Request.Context(), h.Carts, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return nil, false
	}
	return l, true
}

// respondCart writes the cart, or a 500 if the write-through failed.
func respondCart(c *gin.Context, l *cart.Ledger, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}
	c.JSON(http.StatusOK, cartResponse(l))
}

// CreateCart handles POST /v1/carts
func (h *Handlers) CreateCart(c *gin.Context) {
	l, err := cart.Open(c.Request.Context(), h.Carts, uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart"})
		return
	}
	c.JSON(http.StatusCreated, cartResponse(l))
}

// GetCart handles GET /v1/carts/:cartId
func (h *Handlers) GetCart(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cartResponse(l))
}

type AddToCartInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// AddToCart handles POST /v1/carts/:cartId/items. Name, image, price and
// stock are captured from the product as it is now.
func (h *Handlers) AddToCart(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	product, err := h.loadProduct(ctx, input.ProductID)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}
	if product.CountInStock <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product is out of stock"})
		return
	}

	err = l.AddItem(ctx, cart.LineItem{
		ProductID:    product.ID,
		Name:         product.Name,
		Image:        product.Image,
		Price:        product.Price,
		CountInStock: product.CountInStock,
		Quantity:     input.Quantity,
	})
	respondCart(c, l, err)
}

type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateCartItem handles PUT /v1/carts/:cartId/items/:productId. A quantity
// of zero or less removes the line.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	respondCart(c, l, l.SetQuantity(c.Request.Context(), productID, *input.Quantity))
}

// RemoveCartItem handles DELETE /v1/carts/:cartId/items/:productId
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	respondCart(c, l, l.RemoveItem(c.Request.Context(), productID))
}

// ClearCart handles DELETE /v1/carts/:cartId/items. Shipping and payment
// choices are kept.
func (h *Handlers) ClearCart(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}
	respondCart(c, l, l.Clear(c.Request.Context()))
}

// ResetCart handles DELETE /v1/carts/:cartId and forgets everything stored.
func (h *Handlers) ResetCart(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}
	respondCart(c, l, l.Reset(c.Request.Context()))
}

// SaveShippingAddress handles PUT /v1/carts/:cartId/shipping
func (h *Handlers) SaveShippingAddress(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}
	var addr cart.ShippingAddress
	if err := c.ShouldBindJSON(&addr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "Please fill in all address fields")})
		return
	}
	respondCart(c, l, l.SaveShippingAddress(c.Request.Context(), addr))
}

type PaymentMethodInput struct {
	PaymentMethod string `json:"paymentMethod" binding:"required,oneof=PayPal 'Cash on Delivery'"`
}

// SavePaymentMethod handles PUT /v1/carts/:cartId/payment
func (h *Handlers) SavePaymentMethod(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}
	var input PaymentMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment method must be PayPal or Cash on Delivery"})
		return
	}
	respondCart(c, l, l.SavePaymentMethod(c.Request.Context(), input.PaymentMethod))
}

// Checkout handles POST /v1/carts/:cartId/checkout. The cart is turned into
// an order submission, placed for the logged-in user, and emptied on success.
func (h *Handlers) Checkout(c *gin.Context) {
	l, ok := h.openLedger(c)
	if !ok {
		return
	}

	// 1. --- Check The Cart ---
	state := l.State()
	if state.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}
	if !state.ShippingAddress.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address is required"})
		return
	}

	// 2. --- Place The Order ---
	ctx := c.Request.Context()
	order, err := h.placeOrder(ctx, middleware.UserID(c), cart.BuildOrderRequest(state))
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}

	// 3. --- Clear The Cart ---
	// The order already exists, so a storage failure here is not fatal.
	if err := l.Clear(ctx); err != nil {
		c.JSON(http.StatusCreated, gin.H{"order": order, "warning": "Order placed but the cart could not be cleared"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}
