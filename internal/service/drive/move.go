package drive

import (
	"context"
	"fmt"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/repositories"
)

// validateDestination walks the destination's ancestor chain toward the root
// sentinel and rejects the move if the destination is one of the moved nodes
// or sits inside one of their subtrees. Cost is proportional to destination
// depth; nothing is cached across calls, so every attempt re-checks the
// current tree shape.
func (s *driveService) validateDestination(ctx context.Context, destID string, moving map[string]struct{}) error {
	for id := destID; id != models.RootParentID; {
		if _, ok := moving[id]; ok {
			return &domain.ConflictError{
				Message:      "destination is the moved node or its descendant",
				ResourceType: "node",
				ResourceID:   id,
			}
		}
		node, err := s.nodes.Get(ctx, models.PartitionActive, id)
		if err != nil {
			return err
		}
		id = node.ParentID
	}
	return nil
}

// MoveNodes reparents nodes under a new owned parent folder. Validation and
// the per-node parent updates are separate store calls; a concurrent
// structural change between them is an accepted race, and callers retry by
// simply calling again.
func (s *driveService) MoveNodes(ctx context.Context, callerID string, req *models.MoveNodesRequest) error {
	if len(req.NodeIDs) == 0 {
		return &domain.ValidationError{Message: "no nodes to move"}
	}

	if _, err := s.guard.ResolveOwnedFolder(ctx, models.PartitionActive, req.NewParentID, callerID); err != nil {
		return err
	}

	moving := make(map[string]struct{}, len(req.NodeIDs))
	for _, id := range req.NodeIDs {
		if _, err := s.guard.ResolveOwned(ctx, models.PartitionActive, id, callerID); err != nil {
			return err
		}
		moving[id] = struct{}{}
	}

	if err := s.validateDestination(ctx, req.NewParentID, moving); err != nil {
		return err
	}

	for _, id := range req.NodeIDs {
		upd := repositories.NodeUpdate{ParentID: &req.NewParentID}
		if err := s.nodes.Update(ctx, models.PartitionActive, id, upd); err != nil {
			return fmt.Errorf("reparent node %s: %w", id, err)
		}
	}

	s.logger.Info("nodes moved",
		"count", len(req.NodeIDs),
		"new_parent_id", req.NewParentID,
		"owner_id", callerID,
	)

	return nil
}
