package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the access token payload issued by the hosted auth backend.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Normalize fills identity fields the auth backend only places in registered claims.
func (c *JWTClaims) Normalize() {
	if c == nil {
		return
	}
	if c.UserID == "" {
		c.UserID = c.Subject
	}
	role := UserRole(strings.ToUpper(string(c.Role)))
	if role != RoleAdmin {
		role = RoleStudent
	}
	c.Role = role
}

// IsAdmin reports whether the claims carry the admin role.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
