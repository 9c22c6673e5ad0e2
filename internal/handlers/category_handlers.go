package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/shopkart/shopkart-api/internal/models"
)

const categoryColumns = "id, name, slug, description, image, parent_id, created_at, updated_at"

func scanCategory(row rowScanner) (models.Category, error) {
	var cat models.Category
	var description, image sql.NullString
	var parentID sql.NullInt64
	err := row.Scan(&cat.ID, &cat.Name, &cat.Slug, &description, &image, &parentID, &cat.CreatedAt, &cat.UpdatedAt)
	cat.Description = description.String
	cat.Image = image.String
	if parentID.Valid {
		v := parentID.Int64
		cat.ParentID = &v
	}
	// Render as [] in JSON instead of null
	cat.Subcategories = []models.Category{}
	return cat, err
}

func (h *Handlers) loadCategory(ctx context.Context, id int64) (models.Category, error) {
	cat, err := scanCategory(h.DB.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return cat, &requestError{Status: http.StatusNotFound, Message: "Category not found"}
	}
	return cat, err
}

// buildCategoryTree nests categories under their parents. Categories whose
// parent no longer exists are treated as roots.
func buildCategoryTree(all []models.Category) []models.Category {
	known := make(map[int64]bool, len(all))
	for _, cat := range all {
		known[cat.ID] = true
	}

	children := make(map[int64][]models.Category)
	var roots []models.Category
	for _, cat := range all {
		if cat.ParentID != nil && known[*cat.ParentID] && *cat.ParentID != cat.ID {
			children[*cat.ParentID] = append(children[*cat.ParentID], cat)
			continue
		}
		roots = append(roots, cat)
	}

	// Attach children depth-first so grandchildren are included.
	seen := make(map[int64]bool, len(all))
	var attach func(cat models.Category) models.Category
	attach = func(cat models.Category) models.Category {
		seen[cat.ID] = true
		cat.Subcategories = []models.Category{}
		for _, child := range children[cat.ID] {
			if seen[child.ID] {
				continue
			}
			cat.Subcategories = append(cat.Subcategories, attach(child))
		}
		return cat
	}

	tree := []models.Category{}
	for _, root := range roots {
		tree = append(tree, attach(root))
	}
	return tree
}

// GetAllCategories (Public - Returns Tree Structure)
func (h *Handlers) GetAllCategories(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. Product counts keyed by category name
	counts := make(map[string]int)
	countRows, err := h.DB.QueryContext(ctx, "SELECT category, COUNT(*) FROM products GROUP BY category")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	for countRows.Next() {
		var name string
		var n int
		if err := countRows.Scan(&name, &n); err != nil {
			countRows.Close()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		counts[name] = n
	}
	countRows.Close()

	// 2. Fetch all categories flat
	rows, err := h.DB.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY name ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var all []models.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		cat.ProductCount = counts[cat.Name]
		all = append(all, cat)
	}

	// 3. Build the Tree
	c.JSON(http.StatusOK, gin.H{"categories": buildCategoryTree(all)})
}

// CategoryInput is the body of POST and PUT /v1/categories.
type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ParentID    *int64 `json:"parentCategory"`
}

// checkCategory validates the name and parent of a category being saved.
// selfID is 0 for a new category.
func (h *Handlers) checkCategory(ctx context.Context, name string, parentID *int64, selfID int64) error {
	var n int
	if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE name = ? AND id <> ?", name, selfID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return &requestError{Status: http.StatusBadRequest, Message: "Category already exists"}
	}
	if parentID == nil {
		return nil
	}
	if selfID != 0 && *parentID == selfID {
		return &requestError{Status: http.StatusBadRequest, Message: "A category cannot be its own parent"}
	}
	if _, err := h.loadCategory(ctx, *parentID); err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			return &requestError{Status: http.StatusBadRequest, Message: "Parent category not found"}
		}
		return err
	}
	return nil
}

// CreateCategory (Admin Only)
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "Category name is required")})
		return
	}
	ctx := c.Request.Context()

	name := strings.TrimSpace(input.Name)
	if err := h.checkCategory(ctx, name, input.ParentID, 0); err != nil {
		respondError(c, err, "Database error")
		return
	}

	now := time.Now().UTC()
	cat := models.Category{
		Name:          name,
		Slug:          slug.Make(name),
		Description:   input.Description,
		Image:         input.Image,
		ParentID:      input.ParentID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Subcategories: []models.Category{},
	}
	res, err := h.DB.ExecContext(ctx,
		"INSERT INTO categories (name, slug, description, image, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		cat.Name, cat.Slug, cat.Description, cat.Image, cat.ParentID, cat.CreatedAt, cat.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	cat.ID, _ = res.LastInsertId()

	// Return the full object so the UI can update the tree immediately
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": cat})
}

// UpdateCategory (Admin Only)
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "Category name is required")})
		return
	}
	ctx := c.Request.Context()

	cat, err := h.loadCategory(ctx, id)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}
	name := strings.TrimSpace(input.Name)
	if err := h.checkCategory(ctx, name, input.ParentID, id); err != nil {
		respondError(c, err, "Database error")
		return
	}

	cat.Name = name
	cat.Slug = slug.Make(name)
	cat.Description = input.Description
	cat.Image = input.Image
	cat.ParentID = input.ParentID
	cat.UpdatedAt = time.Now().UTC()

	_, err = h.DB.ExecContext(ctx,
		"UPDATE categories SET name = ?, slug = ?, description = ?, image = ?, parent_id = ?, updated_at = ? WHERE id = ?",
		cat.Name, cat.Slug, cat.Description, cat.Image, cat.ParentID, cat.UpdatedAt, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated", "category": cat})
}

// DeleteCategory (Admin Only). Categories that still have subcategories are kept.
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.loadCategory(ctx, id); err != nil {
		respondError(c, err, "Database error")
		return
	}

	var children int
	if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories WHERE parent_id = ?", id).Scan(&children); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if children > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete category with subcategories"})
		return
	}

	if _, err := h.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
