package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopkart/shopkart-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryBody struct {
	Category models.Category `json:"category"`
}

func TestCategories_Tree(t *testing.T) {
	app := setupTestApp(t)
	_, adminToken := app.createUser("Admin", "admin@example.com", models.RoleAdmin, true)

	create := func(name string, parent *int64) models.Category {
		body := gin.H{"name": name}
		if parent != nil {
			body["parentCategory"] = *parent
		}
		w := app.do(http.MethodPost, "/v1/categories", adminToken, body)
		requireStatus(t, w, http.StatusCreated)
		return decode[categoryBody](t, w).Category
	}

	electronics := create("Electronics", nil)
	computers := create("Computers", &electronics.ID)
	create("Laptops", &computers.ID)
	create("Books", nil)
	assert.Equal(t, "electronics", electronics.Slug)

	app.createProduct("Gaming Laptop", "Laptops", 1500, 3)
	app.createProduct("Ultrabook", "Laptops", 1200, 3)
	app.createProduct("Novel", "Books", 15, 30)

	w := app.do(http.MethodGet, "/v1/categories", "", nil)
	requireStatus(t, w, http.StatusOK)
	tree := decode[struct {
		Categories []models.Category `json:"categories"`
	}](t, w).Categories

	require.Len(t, tree, 2)
	assert.Equal(t, "Books", tree[0].Name)
	assert.Equal(t, 1, tree[0].ProductCount)
	assert.Empty(t, tree[0].Subcategories)

	assert.Equal(t, "Electronics", tree[1].Name)
	require.Len(t, tree[1].Subcategories, 1)
	require.Len(t, tree[1].Subcategories[0].Subcategories, 1)
	laptops := tree[1].Subcategories[0].Subcategories[0]
	assert.Equal(t, "Laptops", laptops.Name)
	assert.Equal(t, 2, laptops.ProductCount)
}

func TestCategories_Rules(t *testing.T) {
	app := setupTestApp(t)
	_, adminToken := app.createUser("Admin", "admin@example.com", models.RoleAdmin, true)
	_, userToken := app.createUser("User", "user@example.com", models.RoleUser, true)

	w := app.do(http.MethodPost, "/v1/categories", userToken, gin.H{"name": "Toys"})
	requireStatus(t, w, http.StatusForbidden)

	w = app.do(http.MethodPost, "/v1/categories", adminToken, gin.H{"name": "Toys"})
	requireStatus(t, w, http.StatusCreated)
	toys := decode[categoryBody](t, w).Category

	w = app.do(http.MethodPost, "/v1/categories", adminToken, gin.H{"name": "Toys"})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Category already exists", errorMessage(t, w))

	w = app.do(http.MethodPost, "/v1/categories", adminToken, gin.H{"name": "Orphan", "parentCategory": 999})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Parent category not found", errorMessage(t, w))

	w = app.do(http.MethodPost, "/v1/categories", adminToken, gin.H{"name": "Puzzles", "parentCategory": toys.ID})
	requireStatus(t, w, http.StatusCreated)
	puzzles := decode[categoryBody](t, w).Category

	w = app.do(http.MethodPut, "/v1/categories/"+itoa(toys.ID), adminToken, gin.H{"name": "Toys", "parentCategory": toys.ID})
	requireStatus(t, w, http.StatusBadRequest)

	w = app.do(http.MethodPut, "/v1/categories/"+itoa(toys.ID), adminToken, gin.H{"name": "Toys & Games"})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "toys-and-games", decode[categoryBody](t, w).Category.Slug)

	w = app.do(http.MethodDelete, "/v1/categories/"+itoa(toys.ID), adminToken, nil)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Cannot delete category with subcategories", errorMessage(t, w))

	w = app.do(http.MethodDelete, "/v1/categories/"+itoa(puzzles.ID), adminToken, nil)
	requireStatus(t, w, http.StatusOK)
	w = app.do(http.MethodDelete, "/v1/categories/"+itoa(toys.ID), adminToken, nil)
	requireStatus(t, w, http.StatusOK)
	w = app.do(http.MethodDelete, "/v1/categories/"+itoa(toys.ID), adminToken, nil)
	requireStatus(t, w, http.StatusNotFound)
}
