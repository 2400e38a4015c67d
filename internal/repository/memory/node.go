// Package memory provides an in-memory NodeRepository. It backs the service
// test suites and mirrors the partition semantics of the postgres
// implementation: two disjoint node maps, per-node atomic operations, no
// cross-node transactions.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/repositories"
)

// MemoryNodeRepository implements repositories.NodeRepository over two maps.
// Safe for concurrent use.
type MemoryNodeRepository struct {
	mu         sync.RWMutex
	partitions map[models.Partition]map[string]models.Node
}

// NewNodeRepository creates an empty in-memory node repository
func NewNodeRepository() *MemoryNodeRepository {
	return &MemoryNodeRepository{
		partitions: map[models.Partition]map[string]models.Node{
			models.PartitionActive: {},
			models.PartitionTrash:  {},
		},
	}
}

// Get retrieves a node by ID from the given partition
func (r *MemoryNodeRepository) Get(ctx context.Context, p models.Partition, id string) (*models.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.partitions[p][id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	copied := node
	return &copied, nil
}

// ListChildren lists the nodes whose parent is parentID
func (r *MemoryNodeRepository) ListChildren(ctx context.Context, p models.Partition, parentID string) ([]models.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var nodes []models.Node
	for _, node := range r.partitions[p] {
		if node.ParentID == parentID {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// ListByOwner lists every node an owner has in the partition
func (r *MemoryNodeRepository) ListByOwner(ctx context.Context, p models.Partition, ownerID string) ([]models.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var nodes []models.Node
	for _, node := range r.partitions[p] {
		if node.OwnerID == ownerID {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// Insert stores a new node, assigning an ID when the node carries none
func (r *MemoryNodeRepository) Insert(ctx context.Context, p models.Partition, node *models.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if node.ID == "" {
		node.ID = uuid.New().String()
	}
	if node.LastModified.IsZero() {
		node.LastModified = time.Now()
	}
	if _, exists := r.partitions[p][node.ID]; exists {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrConflict)
	}

	r.partitions[p][node.ID] = *node
	return nil
}

// Update applies the non-nil fields of upd to the node
func (r *MemoryNodeRepository) Update(ctx context.Context, p models.Partition, id string, upd repositories.NodeUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.partitions[p][id]
	if !ok {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	if upd.ParentID != nil {
		node.ParentID = *upd.ParentID
	}
	if upd.Name != nil {
		node.Name = *upd.Name
	}
	if upd.BlobRef != nil {
		node.BlobRef = *upd.BlobRef
	}
	if upd.Size != nil {
		node.Size = *upd.Size
	}
	if upd.ContentType != nil {
		node.ContentType = *upd.ContentType
	}
	node.LastModified = time.Now()

	r.partitions[p][id] = node
	return nil
}

// DeleteAndReturn atomically removes a node and returns the removed record
func (r *MemoryNodeRepository) DeleteAndReturn(ctx context.Context, p models.Partition, id string) (*models.Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.partitions[p][id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	delete(r.partitions[p], id)
	return &node, nil
}

// Count reports how many nodes a partition holds. Test helper.
func (r *MemoryNodeRepository) Count(p models.Partition) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.partitions[p])
}
