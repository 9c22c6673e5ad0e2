package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopkart/shopkart-api/internal/middleware"
	"github.com/shopkart/shopkart-api/internal/models"
)

const userColumns = "id, name, email, password_hash, role, is_active, created_at, updated_at"

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.IsAdmin = u.Role == models.RoleAdmin
	return u, err
}

func (h *Handlers) loadUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(h.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, &requestError{Status: http.StatusNotFound, Message: "User not found"}
	}
	return u, err
}

// emailTaken reports whether another user already owns email.
func (h *Handlers) emailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int
	err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?", email, exceptID).Scan(&n)
	return n > 0, err
}

// authUser builds the response block and signs a fresh token.
func (h *Handlers) authUser(u models.User) (models.AuthUser, error) {
	token, err := h.Tokens.GenerateToken(u.ID)
	if err != nil {
		return models.AuthUser{}, err
	}
	return models.AuthUser{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		IsAdmin: u.Role == models.RoleAdmin,
		Token:   token,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- Signup ---

// SignupInput is the body of POST /v1/users/signup.
type SignupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpassword"`
	Role     string `json:"role"`
}

// Signup registers a new account and logs it in.
func (h *Handlers) Signup(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "Please provide all required fields")})
		return
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be either user or admin"})
		return
	}

	// 2. --- Check Duplicate Email ---
	email := normalizeEmail(input.Email)
	taken, err := h.emailTaken(c.Request.Context(), email, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if taken {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
		return
	}

	// 3. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 4. --- Save to Database ---
	now := time.Now().UTC()
	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: password.Hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := h.DB.ExecContext(c.Request.Context(),
		"INSERT INTO users (name, email, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	user.ID, _ = res.LastInsertId()

	// 5. --- Send Success Response ---
	out, err := h.authUser(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "User registered successfully", "user": out})
}

// --- Login ---

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and returns a token.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "Please provide email and password")})
		return
	}

	// 1. --- Find User ---
	user, err := scanUser(h.DB.QueryRowContext(c.Request.Context(),
		"SELECT "+userColumns+" FROM users WHERE email = ?", normalizeEmail(input.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	// 2. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// 3. --- Check Status ---
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
		return
	}

	out, err := h.authUser(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful", "user": out})
}

// --- Profile ---

// GetProfile returns the logged-in user.
func (h *Handlers) GetProfile(c *gin.Context) {
	user, err := h.loadUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Database error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ProfileInput is the body of PUT /v1/users/profile. Empty fields are left unchanged.
type ProfileInput struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,strongpassword"`
}

// UpdateProfile lets a user change their own name, email or password.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "")})
		return
	}

	ctx := c.Request.Context()
	user, err := h.loadUser(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Database error")
		return
	}

	// 1. --- Apply Changes ---
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if input.Email != "" {
		email := normalizeEmail(input.Email)
		taken, err := h.emailTaken(ctx, email, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if taken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
			return
		}
		user.Email = email
	}
	if input.Password != "" {
		var password models.Password
		if err := password.Set(input.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.PasswordHash = password.Hash
	}
	user.UpdatedAt = time.Now().UTC()

	// 2. --- Save ---
	_, err = h.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?",
		user.Name, user.Email, user.PasswordHash, user.UpdatedAt, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	out, err := h.authUser(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "user": out})
}

// --- Admin User Management ---

func (h *Handlers) listUsers(ctx context.Context) ([]models.User, error) {
	rows, err := h.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetAllUsers (Admin Only)
func (h *Handlers) GetAllUsers(c *gin.Context) {
	users, err := h.listUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(users), "users": users})
}

// GetUserByID (Admin Only)
func (h *Handlers) GetUserByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.loadUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// AdminUserInput is the body of PUT /v1/users/:id.
type AdminUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
	IsActive *bool  `json:"isActive"`
}

// UpdateUser (Admin Only) changes name, email, role or blocked status.
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input AdminUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingError(err, "")})
		return
	}

	ctx := c.Request.Context()
	user, err := h.loadUser(ctx, id)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if input.Email != "" {
		email := normalizeEmail(input.Email)
		taken, err := h.emailTaken(ctx, email, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if taken {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already in use"})
			return
		}
		user.Email = email
	}
	if input.Role != "" {
		user.Role = input.Role
		user.IsAdmin = user.Role == models.RoleAdmin
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	user.UpdatedAt = time.Now().UTC()

	_, err = h.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, role = ?, is_active = ?, updated_at = ? WHERE id = ?",
		user.Name, user.Email, user.Role, user.IsActive, user.UpdatedAt, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User updated successfully", "user": user})
}

// DeleteUser (Admin Only). Admin accounts cannot be deleted.
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user, err := h.loadUser(ctx, id)
	if err != nil {
		respondError(c, err, "Database error")
		return
	}
	if user.Role == models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete admin user"})
		return
	}

	if _, err := h.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User removed successfully"})
}
