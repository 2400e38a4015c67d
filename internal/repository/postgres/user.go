package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new user record
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, username, drive_root_id, profile_blob_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Users)

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.DriveRootID,
		user.ProfileBlobRef,
		user.CreatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("user %s: %w", user.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by the identity provider's subject ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, username, drive_root_id, profile_blob_ref, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Users)

	var user models.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.DriveRootID,
		&user.ProfileBlobRef,
		&user.CreatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// UpdateUsername changes the display name
func (r *PostgresUserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET username = $1
		WHERE id = $2
	`, r.tables.Users)

	result, err := r.pool.Exec(ctx, query, username, id)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteAndReturn atomically removes a user and returns the removed record
func (r *PostgresUserRepository) DeleteAndReturn(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
		RETURNING id, email, username, drive_root_id, profile_blob_ref, created_at
	`, r.tables.Users)

	var user models.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.DriveRootID,
		&user.ProfileBlobRef,
		&user.CreatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}

	return &user, nil
}

// UpdateProfileBlobRef records the blob holding the profile picture
func (r *PostgresUserRepository) UpdateProfileBlobRef(ctx context.Context, id, blobRef string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET profile_blob_ref = $1
		WHERE id = $2
	`, r.tables.Users)

	result, err := r.pool.Exec(ctx, query, blobRef, id)
	if err != nil {
		return fmt.Errorf("update profile blob ref: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
