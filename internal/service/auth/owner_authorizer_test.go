package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	memoryRepo "cirrus/internal/repository/memory"
)

func seedNode(t *testing.T, nodes *memoryRepo.MemoryNodeRepository, p models.Partition, node models.Node) string {
	t.Helper()
	require.NoError(t, nodes.Insert(context.Background(), p, &node))
	return node.ID
}

func TestResolveOwned(t *testing.T) {
	nodes := memoryRepo.NewNodeRepository()
	guard := NewOwnerAuthorizer(nodes)
	id := seedNode(t, nodes, models.PartitionActive, models.Node{ID: "n1", OwnerID: "alice", Name: "x", IsFolder: true})

	node, err := guard.ResolveOwned(context.Background(), models.PartitionActive, id, "alice")
	require.NoError(t, err)
	assert.Equal(t, "n1", node.ID)
}

func TestResolveOwned_MissingIsNotFound(t *testing.T) {
	guard := NewOwnerAuthorizer(memoryRepo.NewNodeRepository())

	_, err := guard.ResolveOwned(context.Background(), models.PartitionActive, "ghost", "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveOwned_OwnerMismatchIsForbidden(t *testing.T) {
	nodes := memoryRepo.NewNodeRepository()
	guard := NewOwnerAuthorizer(nodes)
	id := seedNode(t, nodes, models.PartitionActive, models.Node{ID: "n1", OwnerID: "alice", Name: "x", IsFolder: true})

	_, err := guard.ResolveOwned(context.Background(), models.PartitionActive, id, "bob")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveOwned_PartitionsAreSeparate(t *testing.T) {
	nodes := memoryRepo.NewNodeRepository()
	guard := NewOwnerAuthorizer(nodes)
	id := seedNode(t, nodes, models.PartitionTrash, models.Node{ID: "t1", OwnerID: "alice", Name: "x", IsFolder: true})

	_, err := guard.ResolveOwned(context.Background(), models.PartitionActive, id, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = guard.ResolveOwned(context.Background(), models.PartitionTrash, id, "alice")
	assert.NoError(t, err)
}

func TestResolveOwnedFolder_RejectsFiles(t *testing.T) {
	nodes := memoryRepo.NewNodeRepository()
	guard := NewOwnerAuthorizer(nodes)
	id := seedNode(t, nodes, models.PartitionActive, models.Node{ID: "f1", OwnerID: "alice", Name: "x.txt", IsFolder: false})

	_, err := guard.ResolveOwnedFolder(context.Background(), models.PartitionActive, id, "alice")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
