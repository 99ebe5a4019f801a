package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the claims we rely on from the identity provider's
// access tokens (Supabase-style). Subject carries the user ID.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
