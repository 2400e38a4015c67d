package repositories

import (
	"context"

	"cirrus/internal/domain/models"
)

// NodeUpdate names the fields a node update may touch. Nil pointers leave
// the stored value unchanged. OwnerID is immutable and BlobRef, once set,
// is never reassigned; the upload pipeline sets it exactly once on commit.
type NodeUpdate struct {
	ParentID    *string
	Name        *string
	BlobRef     *string
	Size        *int64
	ContentType *string
}

// NodeRepository defines data access for tree nodes. Records are partitioned
// into active and trash; every call addresses exactly one partition and is
// atomic only for the single node it touches. No cross-node transactions.
type NodeRepository interface {
	// Get retrieves a node by ID from the given partition.
	Get(ctx context.Context, p models.Partition, id string) (*models.Node, error)

	// ListChildren lists the nodes whose parent is parentID. Sibling order
	// is unspecified.
	ListChildren(ctx context.Context, p models.Partition, parentID string) ([]models.Node, error)

	// ListByOwner lists every node an owner has in the partition.
	ListByOwner(ctx context.Context, p models.Partition, ownerID string) ([]models.Node, error)

	// Insert stores a new node. When node.ID is empty the store assigns one
	// and writes it back. Returns ErrConflict if a uniqueness constraint
	// rejects the insert.
	Insert(ctx context.Context, p models.Partition, node *models.Node) error

	// Update applies the non-nil fields of upd to the node.
	Update(ctx context.Context, p models.Partition, id string, upd NodeUpdate) error

	// DeleteAndReturn atomically removes a node and returns the removed
	// record, so the caller can inspect it exactly once. Returns
	// ErrNotFound if no such node exists in the partition.
	DeleteAndReturn(ctx context.Context, p models.Partition, id string) (*models.Node, error)
}
