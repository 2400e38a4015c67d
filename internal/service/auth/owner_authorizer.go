// Package auth holds the ownership guard every tree-mutating operation goes
// through before acting.
package auth

import (
	"context"
	"fmt"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/repositories"
)

// OwnerAuthorizer resolves nodes and asserts caller ownership. A caller can
// touch a node only if they own it; there is no sharing model.
//
// This is the simplest authorization shape. Alternatives that would slot in
// behind the same methods: role-based access on a drive, or per-node sharing
// grants.
type OwnerAuthorizer struct {
	nodes repositories.NodeRepository
}

// NewOwnerAuthorizer creates a new ownership-based authorizer
func NewOwnerAuthorizer(nodes repositories.NodeRepository) *OwnerAuthorizer {
	return &OwnerAuthorizer{nodes: nodes}
}

// ResolveOwned loads a node from the given partition and asserts the caller
// owns it. Returns ErrNotFound when the node is absent from the partition
// and ErrForbidden on an owner mismatch.
func (a *OwnerAuthorizer) ResolveOwned(ctx context.Context, p models.Partition, id, callerID string) (*models.Node, error) {
	node, err := a.nodes.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if node.OwnerID != callerID {
		return nil, fmt.Errorf("access denied to node %s: %w", id, domain.ErrForbidden)
	}
	return node, nil
}

// ResolveOwnedFolder is ResolveOwned plus a folder assertion, used when the
// node will serve as a destination or parent.
func (a *OwnerAuthorizer) ResolveOwnedFolder(ctx context.Context, p models.Partition, id, callerID string) (*models.Node, error) {
	node, err := a.ResolveOwned(ctx, p, id, callerID)
	if err != nil {
		return nil, err
	}
	if !node.IsFolder {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("node %s is not a folder", id)}
	}
	return node, nil
}
