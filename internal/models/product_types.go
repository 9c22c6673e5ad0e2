package models

import "time"

// LowStockThreshold marks products the admin dashboard flags for restocking.
const LowStockThreshold = 10

// Product is the model for the 'products' table.
type Product struct {
	ID            int64    `json:"_id" db:"id"`
	Name          string   `json:"name" db:"name"`
	Slug          string   `json:"slug" db:"slug"`
	Image         string   `json:"image" db:"image"`
	Brand         string   `json:"brand" db:"brand"`
	Category      string   `json:"category" db:"category"`
	Description   string   `json:"description" db:"description"`
	Price         float64  `json:"price" db:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" db:"original_price"`
	CountInStock  int      `json:"countInStock" db:"count_in_stock"`
	Rating        float64  `json:"rating" db:"rating"`
	NumReviews    int      `json:"numReviews" db:"num_reviews"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (Not in DB table, populated manually)
	Reviews []Review `json:"reviews,omitempty" db:"-"`
}

// Review is the model for the 'reviews' table. One per user per product.
type Review struct {
	ID        int64     `json:"_id" db:"id"`
	ProductID int64     `json:"product" db:"product_id"`
	UserID    int64     `json:"user" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
