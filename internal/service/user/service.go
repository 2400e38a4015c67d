// Package user implements the drive-side user lifecycle: first-contact
// provisioning, profile maintenance and full account teardown.
package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"cirrus/internal/config"
	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/repositories"
	"cirrus/internal/domain/services"
	"cirrus/internal/utils"
)

type userService struct {
	users  repositories.UserRepository
	drive  services.DriveService
	blobs  repositories.BlobStore
	logger *slog.Logger
}

// NewService creates a new user service
func NewService(
	users repositories.UserRepository,
	drive services.DriveService,
	blobs repositories.BlobStore,
	logger *slog.Logger,
) services.UserService {
	return &userService{
		users:  users,
		drive:  drive,
		blobs:  blobs,
		logger: logger,
	}
}

// GetOrProvision returns the caller's user record, creating the record and
// the drive root on first contact. Two concurrent first requests can race;
// the duplicate insert loses and re-reads the winner's record.
func (s *userService) GetOrProvision(ctx context.Context, callerID, email string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, callerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	rootID, err := s.drive.CreateRootFolder(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("provision drive root: %w", err)
	}

	user = &models.User{
		ID:          callerID,
		Email:       email,
		Username:    usernameFromEmail(email),
		DriveRootID: rootID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the provisioning race. Drop our root and use theirs.
			if terr := s.discardRoot(ctx, callerID, rootID); terr != nil {
				s.logger.Error("failed to discard duplicate drive root", "root_id", rootID, "error", terr)
			}
			return s.users.GetByID(ctx, callerID)
		}
		return nil, fmt.Errorf("create user %s: %w", callerID, err)
	}

	s.logger.Info("user provisioned", "user_id", callerID, "root_id", rootID)
	return user, nil
}

func (s *userService) discardRoot(ctx context.Context, callerID, rootID string) error {
	if err := s.drive.MoveToTrash(ctx, callerID, []string{rootID}); err != nil {
		return err
	}
	return s.drive.PurgeFromTrash(ctx, callerID, []string{rootID})
}

func usernameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// ChangeUsername updates the display name
func (s *userService) ChangeUsername(ctx context.Context, callerID, newName string) error {
	err := validation.Validate(newName,
		validation.Required,
		validation.Length(1, config.MaxUsernameLength),
	)
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid username: %v", err)}
	}

	if err := s.users.UpdateUsername(ctx, callerID, newName); err != nil {
		return err
	}
	s.logger.Info("username changed", "user_id", callerID)
	return nil
}

// UploadProfilePicture replaces the caller's profile picture. The new blob
// is written before the old reference is dropped, so a failed upload keeps
// the previous picture intact.
func (s *userService) UploadProfilePicture(ctx context.Context, callerID, filename string, content io.Reader) error {
	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return err
	}

	contentType := utils.ContentTypeByName(filename)
	if !strings.HasPrefix(contentType, "image/") {
		return &domain.ValidationError{Message: fmt.Sprintf("%q is not an image", filename)}
	}

	ref, _, err := s.blobs.Write(ctx, filename, contentType, content)
	if err != nil {
		return &domain.IOError{Message: "store profile picture", Err: err}
	}

	if err := s.users.UpdateProfileBlobRef(ctx, callerID, ref); err != nil {
		if derr := s.blobs.Delete(ctx, ref); derr != nil {
			s.logger.Error("orphaned profile blob left behind", "blob_ref", ref, "error", derr)
		}
		return err
	}

	if user.ProfileBlobRef != "" {
		if err := s.blobs.Delete(ctx, user.ProfileBlobRef); err != nil {
			s.logger.Warn("failed to delete replaced profile blob", "blob_ref", user.ProfileBlobRef, "error", err)
		}
	}

	s.logger.Info("profile picture updated", "user_id", callerID)
	return nil
}

// OpenProfilePicture returns a reader over the caller's profile picture and
// its content type. The caller must close the reader.
func (s *userService) OpenProfilePicture(ctx context.Context, callerID string) (io.ReadCloser, string, error) {
	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, "", err
	}
	if user.ProfileBlobRef == "" {
		return nil, "", &domain.NotFoundError{Message: "no profile picture set"}
	}

	rc, err := s.blobs.Open(ctx, user.ProfileBlobRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", err
		}
		return nil, "", &domain.IOError{Message: "open profile picture", Err: err}
	}
	return rc, utils.ContentTypeByName(user.ProfileBlobRef), nil
}

// DeleteAccount tears an identity down: the whole drive tree is trashed and
// purged, then the user record and the profile picture blob go. Steps run
// in dependency order so a failed run can simply be retried.
func (s *userService) DeleteAccount(ctx context.Context, callerID string) error {
	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return err
	}

	if err := s.drive.MoveToTrash(ctx, callerID, []string{user.DriveRootID}); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("trash drive root: %w", err)
	}
	if err := s.drive.PurgeFromTrash(ctx, callerID, []string{user.DriveRootID}); err != nil {
		return fmt.Errorf("purge drive root: %w", err)
	}

	removed, err := s.users.DeleteAndReturn(ctx, callerID)
	if err != nil {
		return err
	}

	if removed.ProfileBlobRef != "" {
		if err := s.blobs.Delete(ctx, removed.ProfileBlobRef); err != nil {
			s.logger.Warn("failed to delete profile blob during account teardown", "blob_ref", removed.ProfileBlobRef, "error", err)
		}
	}

	s.logger.Info("account deleted", "user_id", callerID)
	return nil
}
