// Package auth verifies platform-issued JWTs and carries the authenticated
// principal through request contexts. The platform signs tokens with a shared
// HS256 secret; this service only verifies, it never issues tokens to users.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/workhive/filegate/internal/common"
)

// Role is the platform-wide role of an authenticated user.
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// Principal is the authenticated identity every access decision runs against.
type Principal struct {
	ID   string
	Role Role
}

// Claims includes the registered claims plus the user ID and role the
// platform embeds in every token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// GenerateToken signs a JWT for the given user and role using HS256.
// Used by tests and by the platform's token service; filegate itself only
// verifies tokens.
func GenerateToken(userID string, role Role, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Role:   string(role),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetPrincipalFromToken verifies the token signature and expiry and returns
// the principal it asserts. Expired tokens map to common.ErrTokenExpired,
// everything else that fails verification to common.ErrInvalidToken.
func GetPrincipalFromToken(tokenString string, secretKey []byte) (Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, common.ErrTokenExpired
		}
		return Principal{}, common.ErrInvalidToken
	}

	if !token.Valid {
		return Principal{}, common.ErrInvalidToken
	}

	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		return Principal{}, common.ErrInvalidToken
	}

	return Principal{ID: userID, Role: Role(strings.ToLower(strings.TrimSpace(claims.Role)))}, nil
}
