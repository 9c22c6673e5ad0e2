package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopkart/shopkart-api/internal/auth"
	"github.com/shopkart/shopkart-api/internal/cart"
	"github.com/shopkart/shopkart-api/internal/config"
	"github.com/shopkart/shopkart-api/internal/credential"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB     *sql.DB
	Carts  cart.Storage // Durable cart storage (Redis or memory)
	Tokens *auth.Tokens
	Config *config.Config
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// requestError is a failure caused by the request itself. Handlers turn it
// into Status + {"error": Message}.
type requestError struct {
	Status  int
	Message string
}

func (e *requestError) Error() string { return e.Message }

// respondError writes a requestError as-is and anything else as a 500.
func respondError(c *gin.Context, err error, fallback string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		c.JSON(reqErr.Status, gin.H{"error": reqErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// bindingError turns a binding failure into the message sent to the client.
// A missing required field reports missing when it is set. Password rule
// failures use the same wording as the credential package.
func bindingError(err error, missing string) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			switch fe.Tag() {
			case "required":
				if missing != "" {
					return missing
				}
			case credential.Tag:
				if s, ok := fe.Value().(string); ok {
					if perr := credential.Validate(s); perr != nil {
						return perr.Error()
					}
				}
			}
		}
	}
	return err.Error()
}

// parseID reads a numeric path parameter. It writes the 400 itself.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}
