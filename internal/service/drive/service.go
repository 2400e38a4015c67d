// Package drive implements the drive namespace core: the node tree over the
// tree store, the trash lifecycle, cycle-safe moves, streaming uploads and
// archive construction.
package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"cirrus/internal/config"
	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/repositories"
	"cirrus/internal/domain/services"
	"cirrus/internal/service/auth"
)

// RootFolderName is the display name every drive root is created with.
const RootFolderName = "My Drive"

type driveService struct {
	nodes  repositories.NodeRepository
	blobs  repositories.BlobStore
	guard  *auth.OwnerAuthorizer
	logger *slog.Logger
}

// NewService creates a new drive service
func NewService(
	nodes repositories.NodeRepository,
	blobs repositories.BlobStore,
	guard *auth.OwnerAuthorizer,
	logger *slog.Logger,
) services.DriveService {
	return &driveService{
		nodes:  nodes,
		blobs:  blobs,
		guard:  guard,
		logger: logger,
	}
}

// validateNodeName rejects empty, oversized and path-ambiguous names.
// Sibling-name uniqueness is intentionally NOT enforced here; the store's
// duplicate-key classification still surfaces Conflict if a deployment adds
// a uniqueness index.
func validateNodeName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxNodeNameLength),
		validation.By(func(value interface{}) error {
			s, _ := value.(string)
			if strings.ContainsAny(s, "/\x00") {
				return fmt.Errorf("must not contain slashes")
			}
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("must not be blank")
			}
			return nil
		}),
	)
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid name: %v", err)}
	}
	return nil
}

// ListChildren lists the nodes directly under an owned folder
func (s *driveService) ListChildren(ctx context.Context, callerID, parentID string) ([]models.Node, error) {
	if _, err := s.guard.ResolveOwned(ctx, models.PartitionActive, parentID, callerID); err != nil {
		return nil, err
	}

	children, err := s.nodes.ListChildren(ctx, models.PartitionActive, parentID)
	if err != nil {
		return nil, err
	}
	if children == nil {
		children = []models.Node{}
	}
	return children, nil
}

// CreateFolder creates a folder under an owned parent folder
func (s *driveService) CreateFolder(ctx context.Context, callerID string, req *models.CreateFolderRequest) (*models.Node, error) {
	if err := validateNodeName(req.Name); err != nil {
		return nil, err
	}
	if _, err := s.guard.ResolveOwnedFolder(ctx, models.PartitionActive, req.ParentID, callerID); err != nil {
		return nil, err
	}

	folder := &models.Node{
		OwnerID:      callerID,
		ParentID:     req.ParentID,
		Name:         req.Name,
		IsFolder:     true,
		LastModified: time.Now(),
	}
	if err := s.nodes.Insert(ctx, models.PartitionActive, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"owner_id", callerID,
	)

	return folder, nil
}

// CreateRootFolder provisions a drive root for a new owner
func (s *driveService) CreateRootFolder(ctx context.Context, ownerID string) (string, error) {
	root := &models.Node{
		OwnerID:      ownerID,
		ParentID:     models.RootParentID,
		Name:         RootFolderName,
		IsFolder:     true,
		LastModified: time.Now(),
	}
	if err := s.nodes.Insert(ctx, models.PartitionActive, root); err != nil {
		return "", err
	}
	if root.ID == "" {
		return "", fmt.Errorf("root folder insert returned no id: %w", domain.ErrInternal)
	}

	s.logger.Info("drive root created", "id", root.ID, "owner_id", ownerID)
	return root.ID, nil
}
