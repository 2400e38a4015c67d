package drive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
)

// resolveSameParentSet resolves every requested ID against a partition with
// the ownership guard and requires all of them to share a parent. Bulk trash
// and archive requests both address a sibling selection, never an arbitrary
// scatter of nodes.
func (s *driveService) resolveSameParentSet(ctx context.Context, p models.Partition, nodeIDs []string, callerID string) ([]models.Node, error) {
	if len(nodeIDs) == 0 {
		return nil, &domain.ValidationError{Message: "no nodes given"}
	}

	nodes := make([]models.Node, 0, len(nodeIDs))
	for i, id := range nodeIDs {
		node, err := s.guard.ResolveOwned(ctx, p, id, callerID)
		if err != nil {
			return nil, err
		}
		if i > 0 && node.ParentID != nodes[0].ParentID {
			return nil, &domain.ConflictError{
				Message:      "nodes do not share a parent",
				ResourceType: "node",
				ResourceID:   id,
			}
		}
		nodes = append(nodes, *node)
	}
	return nodes, nil
}

// MoveToTrash soft-deletes whole subtrees: every visited node is removed
// from the active partition and inserted into trash with a trashed-at
// timestamp. Remove-then-insert keeps a crashed run from fabricating a node
// in both partitions; the narrow window where a node is in neither is the
// documented cost of the two-partition design.
func (s *driveService) MoveToTrash(ctx context.Context, callerID string, nodeIDs []string) error {
	roots, err := s.resolveSameParentSet(ctx, models.PartitionActive, nodeIDs, callerID)
	if err != nil {
		return err
	}

	now := time.Now()
	frontier := make([]string, len(roots))
	for i, n := range roots {
		frontier[i] = n.ID
	}

	err = s.walkSubtree(ctx, models.PartitionActive, frontier, func(node *models.Node) error {
		removed, err := s.nodes.DeleteAndReturn(ctx, models.PartitionActive, node.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}

		removed.TrashedAt = &now
		if err := s.nodes.Insert(ctx, models.PartitionTrash, removed); err != nil {
			return fmt.Errorf("insert node %s into trash: %w", removed.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("nodes trashed", "roots", len(roots), "owner_id", callerID)
	return nil
}

// ListTrash lists every trashed node the caller owns
func (s *driveService) ListTrash(ctx context.Context, callerID string) ([]models.Node, error) {
	nodes, err := s.nodes.ListByOwner(ctx, models.PartitionTrash, callerID)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []models.Node{}
	}
	return nodes, nil
}

// PurgeFromTrash permanently removes trashed subtrees. Each visited record
// is deleted and, when it carries a blob reference, the blob goes with it.
// A blob already gone is a satisfied postcondition. Requested IDs that are
// no longer in the trash are skipped, which makes retries no-ops.
func (s *driveService) PurgeFromTrash(ctx context.Context, callerID string, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return &domain.ValidationError{Message: "no nodes given"}
	}

	var frontier []string
	for _, id := range nodeIDs {
		node, err := s.guard.ResolveOwned(ctx, models.PartitionTrash, id, callerID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		frontier = append(frontier, node.ID)
	}

	err := s.walkSubtree(ctx, models.PartitionTrash, frontier, func(node *models.Node) error {
		removed, err := s.nodes.DeleteAndReturn(ctx, models.PartitionTrash, node.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}

		if removed.BlobRef != "" {
			if err := s.blobs.Delete(ctx, removed.BlobRef); err != nil {
				return &domain.IOError{Message: fmt.Sprintf("delete blob for node %s", removed.ID), Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("nodes purged", "requested", len(nodeIDs), "owner_id", callerID)
	return nil
}
