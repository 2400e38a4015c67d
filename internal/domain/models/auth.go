package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims represents the JWT claims the identity provider issues.
// Only verification happens here; token issuance is the provider's concern.
type IdentityClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id"`
	IsAnonymous          bool   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *IdentityClaims) GetUserID() string {
	return c.Subject
}
