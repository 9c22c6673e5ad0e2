package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// Tokens signs and validates HS256 tokens carrying a user id.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// New creates a Tokens with the given signing secret and lifetime.
func New(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{secret: secret, ttl: ttl}
}

// GenerateToken creates a new JWT for a given user ID.
func (t *Tokens) GenerateToken(userID int64) (string, error) {
	// 1. Create the claims.
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,                // "sub" (Subject) is the standard claim for User ID
		"exp": now.Add(t.ttl).Unix(), // Expiry
		"iat": now.Unix(),            // "iat" (Issued At)
	}

	// 2. Sign it with HS256 and our secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateToken parses and validates a JWT token string.
// It returns the user ID (subject) if the token is valid.
func (t *Tokens) ValidateToken(tokenString string) (int64, error) {
	// 1. Parse the token string, rejecting anything not signed with HMAC.
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, err // Token parsing failed (e.g., expired, malformed)
	}

	// 2. Get the user ID ("sub") from the claims.
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userIDFloat, ok := claims["sub"].(float64)
		if !ok {
			return 0, errors.New("invalid subject claim")
		}
		// JSON numbers decode as float64
		return int64(userIDFloat), nil
	}

	return 0, ErrInvalidToken
}
