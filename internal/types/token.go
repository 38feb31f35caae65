package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role that may change recipes
const RoleAdmin = "admin"

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IsAdmin reports whether the token grants admin access
func (c *TokenClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
