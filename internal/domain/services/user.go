package services

import (
	"context"
	"io"

	"cirrus/internal/domain/models"
)

// UserService handles drive-side user records. Credentials and token
// issuance live with the identity provider; this service only provisions
// and maintains what the drive needs per identity.
type UserService interface {
	// GetOrProvision returns the caller's user record, creating it and the
	// drive root folder on first contact
	GetOrProvision(ctx context.Context, callerID, email string) (*models.User, error)

	// ChangeUsername updates the display name
	ChangeUsername(ctx context.Context, callerID, newName string) error

	// UploadProfilePicture replaces the caller's profile picture blob
	UploadProfilePicture(ctx context.Context, callerID, filename string, content io.Reader) error

	// OpenProfilePicture returns a reader over the caller's profile
	// picture blob and its content type
	OpenProfilePicture(ctx context.Context, callerID string) (io.ReadCloser, string, error)

	// DeleteAccount removes the user record, the whole drive subtree and
	// the profile picture blob
	DeleteAccount(ctx context.Context, callerID string) error
}
