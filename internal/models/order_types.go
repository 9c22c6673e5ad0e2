package models

import (
	"time"

	"github.com/shopkart/shopkart-api/internal/cart"
)

// PaymentResult is what the payment provider reported when the order was paid.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// Order is the model for the 'orders' table
type Order struct {
	ID              int64                `json:"_id" db:"id"`
	UserID          int64                `json:"user" db:"user_id"`
	OrderItems      []OrderItem          `json:"orderItems" db:"-"`
	ShippingAddress cart.ShippingAddress `json:"shippingAddress" db:"-"`
	PaymentMethod   string               `json:"paymentMethod" db:"payment_method"`
	PaymentResult   *PaymentResult       `json:"paymentResult,omitempty" db:"-"`
	ItemsPrice      float64              `json:"itemsPrice" db:"items_price"`
	TaxPrice        float64              `json:"taxPrice" db:"tax_price"`
	ShippingPrice   float64              `json:"shippingPrice" db:"shipping_price"`
	TotalPrice      float64              `json:"totalPrice" db:"total_price"`
	IsPaid          bool                 `json:"isPaid" db:"is_paid"`
	PaidAt          *time.Time           `json:"paidAt,omitempty" db:"paid_at"`
	IsDelivered     bool                 `json:"isDelivered" db:"is_delivered"`
	DeliveredAt     *time.Time           `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt       time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time            `json:"updatedAt" db:"updated_at"`

	// Populated for the admin list view
	UserName  string `json:"userName,omitempty" db:"-"`
	UserEmail string `json:"userEmail,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table. Name, image and price
// are a snapshot taken when the order was placed.
type OrderItem struct {
	ID        int64   `json:"_id" db:"id"`
	OrderID   int64   `json:"order" db:"order_id"`
	ProductID int64   `json:"product" db:"product_id"`
	Name      string  `json:"name" db:"name"`
	Qty       int     `json:"qty" db:"qty"`
	Image     string  `json:"image" db:"image"`
	Price     float64 `json:"price" db:"price"`
}
