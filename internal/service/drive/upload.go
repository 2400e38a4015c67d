package drive

import (
	"context"
	"fmt"
	"io"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/repositories"
	"cirrus/internal/utils"
)

// Upload streams file content into blob storage and records the node.
// The node row is written first so a visible entry exists for the whole
// transfer; if the blob write or the final metadata update fails, the
// provisional row is removed again so no half-uploaded file survives.
func (s *driveService) Upload(ctx context.Context, callerID, parentID, name string, content io.Reader) (*models.UploadResult, error) {
	if _, err := s.guard.ResolveOwnedFolder(ctx, models.PartitionActive, parentID, callerID); err != nil {
		return nil, err
	}
	if err := validateNodeName(name); err != nil {
		return nil, err
	}

	node := &models.Node{
		OwnerID:     callerID,
		ParentID:    parentID,
		Name:        name,
		IsFolder:    false,
		ContentType: utils.ContentTypeByName(name),
	}
	if err := s.nodes.Insert(ctx, models.PartitionActive, node); err != nil {
		return nil, fmt.Errorf("insert file node: %w", err)
	}

	ref, size, err := s.blobs.Write(ctx, name, node.ContentType, content)
	if err != nil {
		s.discardProvisional(ctx, node.ID)
		return nil, &domain.IOError{Message: fmt.Sprintf("store content for %q", name), Err: err}
	}

	upd := repositories.NodeUpdate{BlobRef: &ref, Size: &size}
	if err := s.nodes.Update(ctx, models.PartitionActive, node.ID, upd); err != nil {
		s.discardProvisional(ctx, node.ID)
		if derr := s.blobs.Delete(ctx, ref); derr != nil {
			s.logger.Error("orphaned blob left after failed upload commit", "blob_ref", ref, "error", derr)
		}
		return nil, fmt.Errorf("commit upload for node %s: %w", node.ID, err)
	}

	s.logger.Info("file uploaded", "node_id", node.ID, "name", name, "size", size, "owner_id", callerID)
	return &models.UploadResult{NodeID: node.ID, BlobRef: ref, Size: size}, nil
}

// discardProvisional best-effort removes the placeholder row of a failed
// upload. A failure here only logs: the caller already has the upload error.
func (s *driveService) discardProvisional(ctx context.Context, nodeID string) {
	if _, err := s.nodes.DeleteAndReturn(ctx, models.PartitionActive, nodeID); err != nil {
		s.logger.Error("failed to remove provisional upload node", "node_id", nodeID, "error", err)
	}
}

// OpenFile resolves an owned file node and opens its content for reading.
// The caller must close the returned reader.
func (s *driveService) OpenFile(ctx context.Context, callerID, nodeID string) (*models.Node, io.ReadCloser, error) {
	node, err := s.guard.ResolveOwned(ctx, models.PartitionActive, nodeID, callerID)
	if err != nil {
		return nil, nil, err
	}
	if node.IsFolder || node.BlobRef == "" {
		return nil, nil, &domain.ValidationError{Message: fmt.Sprintf("node %s has no downloadable content", nodeID)}
	}

	rc, err := s.blobs.Open(ctx, node.BlobRef)
	if err != nil {
		return nil, nil, &domain.IOError{Message: fmt.Sprintf("open content for node %s", nodeID), Err: err}
	}
	return node, rc, nil
}
