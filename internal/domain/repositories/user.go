package repositories

import (
	"context"

	"cirrus/internal/domain/models"
)

// UserRepository defines data access operations for drive-side user records
type UserRepository interface {
	// Create creates a new user record
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by the identity provider's subject ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUsername changes the display name
	UpdateUsername(ctx context.Context, id, username string) error

	// UpdateProfileBlobRef records the blob holding the profile picture
	UpdateProfileBlobRef(ctx context.Context, id, blobRef string) error

	// DeleteAndReturn atomically removes a user and returns the removed
	// record, so account teardown can inspect it exactly once
	DeleteAndReturn(ctx context.Context, id string) (*models.User, error)
}
