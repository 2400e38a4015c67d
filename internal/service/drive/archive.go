package drive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
)

// BuildArchive streams a zip of the selected sibling nodes into w. Folders
// become zip directory entries and every file's content is copied straight
// from blob storage, so the archive never has to be buffered in full.
func (s *driveService) BuildArchive(ctx context.Context, callerID string, nodeIDs []string, w io.Writer) error {
	roots, err := s.resolveSameParentSet(ctx, models.PartitionActive, nodeIDs, callerID)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	// Archive paths are relative to the shared parent. The walk visits a
	// parent before its children, so the parent's path is always recorded
	// by the time a child needs it.
	paths := make(map[string]string, len(roots))
	frontier := make([]string, len(roots))
	for i, n := range roots {
		paths[n.ID] = n.Name
		frontier[i] = n.ID
	}

	err = s.walkSubtree(ctx, models.PartitionActive, frontier, func(node *models.Node) error {
		path, ok := paths[node.ID]
		if !ok {
			path = paths[node.ParentID] + "/" + node.Name
			paths[node.ID] = path
		}

		if node.IsFolder {
			if _, err := zw.Create(path + "/"); err != nil {
				return fmt.Errorf("add folder entry %q: %w", path, err)
			}
			return nil
		}

		if node.BlobRef == "" {
			// A file whose upload never committed has nothing to pack.
			return nil
		}

		fw, err := zw.Create(path)
		if err != nil {
			return fmt.Errorf("add file entry %q: %w", path, err)
		}

		rc, err := s.blobs.Open(ctx, node.BlobRef)
		if err != nil {
			return &domain.IOError{Message: fmt.Sprintf("open content for node %s", node.ID), Err: err}
		}
		defer rc.Close()

		if _, err := io.Copy(fw, rc); err != nil {
			return &domain.IOError{Message: fmt.Sprintf("copy content for node %s", node.ID), Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	s.logger.Info("archive built", "roots", len(roots), "owner_id", callerID)
	return nil
}
