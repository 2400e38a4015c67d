package memory

import (
	"context"
	"fmt"
	"sync"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
)

// MemoryUserRepository implements repositories.UserRepository over a map.
// Safe for concurrent use.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]models.User{}}
}

// Create creates a new user record
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrConflict)
	}
	r.users[user.ID] = *user
	return nil
}

// GetByID retrieves a user by the identity provider's subject ID
func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	copied := user
	return &copied, nil
}

// UpdateUsername changes the display name
func (r *MemoryUserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	user.Username = username
	r.users[id] = user
	return nil
}

// DeleteAndReturn atomically removes a user and returns the removed record
func (r *MemoryUserRepository) DeleteAndReturn(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	delete(r.users, id)
	return &user, nil
}

// UpdateProfileBlobRef records the blob holding the profile picture
func (r *MemoryUserRepository) UpdateProfileBlobRef(ctx context.Context, id, blobRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	user.ProfileBlobRef = blobRef
	r.users[id] = user
	return nil
}
