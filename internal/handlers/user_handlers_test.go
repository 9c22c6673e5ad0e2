package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopkart/shopkart-api/internal/credential"
	"github.com/shopkart/shopkart-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    models.AuthUser `json:"user"`
}

func TestSignup_Success(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(http.MethodPost, "/v1/users/signup", "", gin.H{
		"name":     "  Ada Lovelace ",
		"email":    "Ada@Example.com",
		"password": testPassword,
	})
	requireStatus(t, w, http.StatusCreated)

	body := decode[authBody](t, w)
	assert.True(t, body.Success)
	assert.Equal(t, "Ada Lovelace", body.User.Name)
	assert.Equal(t, "ada@example.com", body.User.Email)
	assert.Equal(t, models.RoleUser, body.User.Role)
	assert.False(t, body.User.IsAdmin)

	id, err := app.h.Tokens.ValidateToken(body.User.Token)
	require.NoError(t, err)
	assert.Equal(t, body.User.ID, id)
}

func TestSignup_PasswordRules(t *testing.T) {
	app := setupTestApp(t)

	cases := map[string]error{
		"Ab1!":     credential.ErrTooShort,
		"abcdef1!": credential.ErrNoUppercase,
		"ABCDEF1!": credential.ErrNoLowercase,
		"Abcdefg!": credential.ErrNoNumber,
		"Abcdefg1": credential.ErrNoSpecial,
	}
	for password, want := range cases {
		t.Run(password, func(t *testing.T) {
			w := app.do(http.MethodPost, "/v1/users/signup", "", gin.H{
				"name": "A", "email": "a@example.com", "password": password,
			})
			requireStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, want.Error(), errorMessage(t, w))
		})
	}
}

func TestSignup_Rejections(t *testing.T) {
	app := setupTestApp(t)
	app.createUser("Existing", "taken@example.com", models.RoleUser, true)

	w := app.do(http.MethodPost, "/v1/users/signup", "", gin.H{"email": "x@example.com"})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Please provide all required fields", errorMessage(t, w))

	w = app.do(http.MethodPost, "/v1/users/signup", "", gin.H{
		"name": "B", "email": "TAKEN@example.com", "password": testPassword,
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "User with this email already exists", errorMessage(t, w))

	w = app.do(http.MethodPost, "/v1/users/signup", "", gin.H{
		"name": "B", "email": "b@example.com", "password": testPassword, "role": "superuser",
	})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Invalid role. Must be either user or admin", errorMessage(t, w))
}

func TestLogin(t *testing.T) {
	app := setupTestApp(t)
	id, _ := app.createUser("Bob", "bob@example.com", models.RoleAdmin, true)
	app.createUser("Blocked", "blocked@example.com", models.RoleUser, false)

	w := app.do(http.MethodPost, "/v1/users/login", "", gin.H{"email": "BOB@example.com", "password": testPassword})
	requireStatus(t, w, http.StatusOK)
	body := decode[authBody](t, w)
	assert.Equal(t, id, body.User.ID)
	assert.True(t, body.User.IsAdmin)
	assert.NotEmpty(t, body.User.Token)

	w = app.do(http.MethodPost, "/v1/users/login", "", gin.H{"email": "bob@example.com", "password": "wrong"})
	requireStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, "Invalid email or password", errorMessage(t, w))

	w = app.do(http.MethodPost, "/v1/users/login", "", gin.H{"email": "nobody@example.com", "password": testPassword})
	requireStatus(t, w, http.StatusUnauthorized)

	w = app.do(http.MethodPost, "/v1/users/login", "", gin.H{"email": "bob@example.com"})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Please provide email and password", errorMessage(t, w))

	w = app.do(http.MethodPost, "/v1/users/login", "", gin.H{"email": "blocked@example.com", "password": testPassword})
	requireStatus(t, w, http.StatusForbidden)
}

func TestProfile(t *testing.T) {
	app := setupTestApp(t)
	_, token := app.createUser("Carol", "carol@example.com", models.RoleUser, true)
	app.createUser("Dave", "dave@example.com", models.RoleUser, true)

	w := app.do(http.MethodGet, "/v1/users/profile", "", nil)
	requireStatus(t, w, http.StatusUnauthorized)

	w = app.do(http.MethodGet, "/v1/users/profile", token, nil)
	requireStatus(t, w, http.StatusOK)
	profile := decode[struct {
		User models.User `json:"user"`
	}](t, w)
	assert.Equal(t, "carol@example.com", profile.User.Email)

	// Email owned by someone else
	w = app.do(http.MethodPut, "/v1/users/profile", token, gin.H{"email": "dave@example.com"})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Email already in use", errorMessage(t, w))

	// Weak new password
	w = app.do(http.MethodPut, "/v1/users/profile", token, gin.H{"password": "weak"})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, credential.ErrTooShort.Error(), errorMessage(t, w))

	// Valid update, then log in with the new password
	w = app.do(http.MethodPut, "/v1/users/profile", token, gin.H{"name": "Caroline", "password": "N3w-Pass!"})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "Caroline", decode[authBody](t, w).User.Name)

	w = app.do(http.MethodPost, "/v1/users/login", "", gin.H{"email": "carol@example.com", "password": "N3w-Pass!"})
	requireStatus(t, w, http.StatusOK)
}

func TestAdminUserManagement(t *testing.T) {
	app := setupTestApp(t)
	adminID, adminToken := app.createUser("Admin", "admin@example.com", models.RoleAdmin, true)
	userID, userToken := app.createUser("User", "user@example.com", models.RoleUser, true)

	w := app.do(http.MethodGet, "/v1/users", userToken, nil)
	requireStatus(t, w, http.StatusForbidden)

	w = app.do(http.MethodGet, "/v1/users", adminToken, nil)
	requireStatus(t, w, http.StatusOK)
	list := decode[struct {
		Count int           `json:"count"`
		Users []models.User `json:"users"`
	}](t, w)
	assert.Equal(t, 2, list.Count)

	w = app.do(http.MethodGet, "/v1/users/999", adminToken, nil)
	requireStatus(t, w, http.StatusNotFound)

	// Block the user; their existing token stops working
	w = app.do(http.MethodPut, "/v1/users/"+itoa(userID), adminToken, gin.H{"isActive": false})
	requireStatus(t, w, http.StatusOK)
	w = app.do(http.MethodGet, "/v1/users/profile", userToken, nil)
	requireStatus(t, w, http.StatusForbidden)

	w = app.do(http.MethodDelete, "/v1/users/"+itoa(adminID), adminToken, nil)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Cannot delete admin user", errorMessage(t, w))

	w = app.do(http.MethodDelete, "/v1/users/"+itoa(userID), adminToken, nil)
	requireStatus(t, w, http.StatusOK)
	w = app.do(http.MethodGet, "/v1/users/"+itoa(userID), adminToken, nil)
	requireStatus(t, w, http.StatusNotFound)
}
