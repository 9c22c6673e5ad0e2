package handlers

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/shopkart/shopkart-api/internal/middleware"
	"github.com/shopkart/shopkart-api/internal/models"
)

// Paging defaults for GET /v1/products.
const (
	defaultPageSize = 12
	maxPageSize     = 100
	defaultTopLimit = 3
)

const productColumns = `id, name, slug, image, brand, category, description, price, original_price,
	count_in_stock, rating, num_reviews, created_at, updated_at`

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var description sql.NullString
	var originalPrice sql.NullFloat64
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Image, &p.Brand, &p.Category, &description,
		&p.Price, &originalPrice, &p.CountInStock, &p.Rating, &p.NumReviews, &p.CreatedAt, &p.UpdatedAt)
	p.Description = description.String
	if originalPrice.Valid {
		v := originalPrice.Float64
		p.OriginalPrice = &v
	}
	return p, err
}

func (h *Handlers) loadProduct(ctx context.Context, id int64) (models.Product, error) {
	p, err := scanProduct(h.DB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, &requestError{Status: http.StatusNotFound, Message: "Product not found"}
	}
	return p, err
}

func (h *Handlers) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := h.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// positiveQuery reads an integer query parameter, falling back to def when
// it is missing, malformed or not positive.
func positiveQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// --- Public Product Routes ---

// GetProducts handles GET /v1/products?keyword=&category=&page=&pageSize=
func (h *Handlers) GetProducts(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	category := strings.TrimSpace(c.Query("category"))
	page := positiveQuery(c, "page", 1)
	pageSize := positiveQuery(c, "pageSize", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	// 1. Build the WHERE clause
	var where strings.Builder
	var args []any
	where.WriteString(" WHERE 1 = 1")
	if keyword != "" {
		where.WriteString(" AND (name LIKE ? OR brand LIKE ?)")
		term := "%" + keyword + "%"
		args = append(args, term, term)
	}
	if category != "" {
		where.WriteString(" AND category = ?")
		args = append(args, category)
	}

	ctx := c.Request.Context()

	// 2. Count for paging
	var total int
	if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+where.String(), args...).Scan(&total); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	// 3. Fetch the page
	query := "SELECT " + productColumns + " FROM products" + where.String() + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	products, err := h.queryProducts(ctx, query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"page":     page,
		"pages":    int(math.Ceil(float64(total) / float64(pageSize))),
		"total":    total,
	})
}

// GetTopProducts handles GET /v1/products/top?limit=3
func (h *Handlers) GetTopProducts(c *gin.Context) {
	limit := positiveQuery(c, "limit", defaultTopLimit)
	if limit > maxPageSize {
		limit = maxPageSize
	}

	products, err := h.queryProducts(c.Request.Context(),
		"SELECT "+productColumns+" FROM products ORDER BY rating DESC, num_reviews DESC, id ASC LIMIT ?", limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /v1/products/:id and includes the reviews.
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	product, err := h.loadProduct(ctx, id)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}

	rows, err := h.DB.QueryContext(ctx,
		"SELECT id, product_id, user_id, name, rating, comment, created_at FROM reviews WHERE product_id = ? ORDER BY created_at DESC, id DESC", id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	defer rows.Close()

	product.Reviews = []models.Review{}
	for rows.Next() {
		var r models.Review
		var comment sql.NullString
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Name, &r.Rating, &comment, &r.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan review"})
			return
		}
		r.Comment = comment.String
		product.Reviews = append(product.Reviews, r)
	}

	c.JSON(http.StatusOK, product)
}

// --- Reviews ---

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// CreateProductReview handles POST /v1/products/:id/reviews. One review per
// user; the product's rating and review count are recomputed afterwards.
func (h *Handlers) CreateProductReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "Please provide a rating and comment")})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB Transaction failed"})
		return
	}
	defer tx.Rollback()

	// 1. --- Product & Reviewer ---
	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE id = ?", id).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var already int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews WHERE product_id = ? AND user_id = ?", id, userID).Scan(&already); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if already > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product already reviewed"})
		return
	}

	var name string
	if err := tx.QueryRowContext(ctx, "SELECT name FROM users WHERE id = ?", userID).Scan(&name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// 2. --- Insert Review ---
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO reviews (product_id, user_id, name, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, userID, name, input.Rating, input.Comment, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add review"})
		return
	}

	// 3. --- Recompute Rating ---
	var count int
	var avg float64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = ?", id).Scan(&count, &avg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute rating"})
		return
	}
	if _, err := tx.ExecContext(ctx, "UPDATE products SET rating = ?, num_reviews = ?, updated_at = ? WHERE id = ?", avg, count, now, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product rating"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review added", "rating": avg, "numReviews": count})
}

// --- Admin Product Routes ---

// ProductInput is the body of POST and PUT /v1/products.
type ProductInput struct {
	Name          string   `json:"name" binding:"required"`
	Image         string   `json:"image"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice" binding:"omitempty,gte=0"`
	CountInStock  int      `json:"countInStock" binding:"gte=0"`
}

// CreateProduct (Admin Only)
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "")})
		return
	}

	now := time.Now().UTC()
	p := models.Product{
		Name:          strings.TrimSpace(input.Name),
		Image:         input.Image,
		Brand:         input.Brand,
		Category:      input.Category,
		Description:   input.Description,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		CountInStock:  input.CountInStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.Slug = slug.Make(p.Name)

	res, err := h.DB.ExecContext(c.Request.Context(), `
		INSERT INTO products (name, slug, image, brand, category, description, price, original_price,
			count_in_stock, rating, num_reviews, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		p.Name, p.Slug, p.Image, p.Brand, p.Category, p.Description, p.Price, p.OriginalPrice,
		p.CountInStock, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	p.ID, _ = res.LastInsertId()

	c.JSON(http.StatusCreated, p)
}

// UpdateProduct (Admin Only)
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "")})
		return
	}

	ctx := c.Request.Context()
	p, err := h.loadProduct(ctx, id)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}

	p.Name = strings.TrimSpace(input.Name)
	p.Slug = slug.Make(p.Name)
	p.Image = input.Image
	p.Brand = input.Brand
	p.Category = input.Category
	p.Description = input.Description
	p.Price = input.Price
	p.OriginalPrice = input.OriginalPrice
	p.CountInStock = input.CountInStock
	p.UpdatedAt = time.Now().UTC()

	_, err = h.DB.ExecContext(ctx, `
		UPDATE products SET name = ?, slug = ?, image = ?, brand = ?, category = ?, description = ?,
			price = ?, original_price = ?, count_in_stock = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Slug, p.Image, p.Brand, p.Category, p.Description,
		p.Price, p.OriginalPrice, p.CountInStock, p.UpdatedAt, p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// DeleteProduct (Admin Only) removes the product and its reviews.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.loadProduct(ctx, id); err != nil {
		respondError(c, err, "Database error")
		return
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB Transaction failed"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE product_id = ?", id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reviews"})
		return
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product removed"})
}
