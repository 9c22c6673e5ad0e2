package models

import "time"

// Category defines the struct for the 'categories' table
type Category struct {
	ID          int64     `json:"_id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image" db:"image"`
	ParentID    *int64    `json:"parentCategory" db:"parent_id"` // Use pointer for NULL
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Virtual fields (Not in DB) - used for the tree view
	ProductCount  int        `json:"productCount" db:"-"`
	Subcategories []Category `json:"subcategories" db:"-"`
}
