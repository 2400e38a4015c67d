package drive

import (
	"context"
	"errors"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
)

// walkSubtree runs an explicit-stack depth-first traversal over one
// partition, shared by the trash, purge and archive paths. The frontier IDs
// must already be ownership-checked by the caller.
//
// For each popped ID the node is fetched, visit runs on it, and then its
// children are pushed. Children are therefore discovered with a parent ID
// that existed at visit time, but sibling order is unspecified. A node that
// vanished between discovery and pop (a concurrent trash or purge) is
// skipped, which is what makes retries of these operations no-ops rather
// than failures.
//
// The forest invariant means no ID should ever repeat; the visited set is a
// guard against a corrupted parent reference producing a revisit loop, not
// something callers may lean on.
func (s *driveService) walkSubtree(ctx context.Context, p models.Partition, frontier []string, visit func(*models.Node) error) error {
	stack := make([]string, len(frontier))
	copy(stack, frontier)

	visited := make(map[string]struct{}, len(frontier))

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[id]; seen {
			s.logger.Warn("subtree revisit skipped, parent references may be corrupted",
				"node_id", id,
				"partition", string(p),
			)
			continue
		}
		visited[id] = struct{}{}

		node, err := s.nodes.Get(ctx, p, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}

		if err := visit(node); err != nil {
			return err
		}

		children, err := s.nodes.ListChildren(ctx, p, id)
		if err != nil {
			return err
		}
		for _, child := range children {
			stack = append(stack, child.ID)
		}
	}

	return nil
}
