package auth

import "cirrus/internal/domain/models"

// TokenVerifier validates bearer tokens from the identity provider. The
// abstraction keeps the middleware agnostic to how keys are fetched, which
// also lets tests substitute a static verifier.
type TokenVerifier interface {
	// VerifyToken validates a JWT string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid
	// signature.
	VerifyToken(tokenString string) (*models.IdentityClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
