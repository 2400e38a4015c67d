package drive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
)

func TestMoveNodes(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	docs := f.mkFolder(t, ownerID, rootID, "Documents")
	file := f.mkFile(t, ownerID, rootID, "a.txt", "a")

	err := f.svc.MoveNodes(context.Background(), ownerID, &models.MoveNodesRequest{
		NodeIDs:     []string{file.NodeID},
		NewParentID: docs.ID,
	})
	require.NoError(t, err)

	moved, err := f.nodes.Get(context.Background(), models.PartitionActive, file.NodeID)
	require.NoError(t, err)
	assert.Equal(t, docs.ID, moved.ParentID)
}

func TestMoveNodes_IntoOwnSubtreeRejected(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	a := f.mkFolder(t, ownerID, rootID, "A")
	b := f.mkFolder(t, ownerID, a.ID, "B")

	// Moving A under its own descendant B would orphan the whole subtree.
	err := f.svc.MoveNodes(context.Background(), ownerID, &models.MoveNodesRequest{
		NodeIDs:     []string{a.ID},
		NewParentID: b.ID,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Nothing moved.
	aAfter, err := f.nodes.Get(context.Background(), models.PartitionActive, a.ID)
	require.NoError(t, err)
	assert.Equal(t, rootID, aAfter.ParentID)
}

func TestMoveNodes_IntoItselfRejected(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	a := f.mkFolder(t, ownerID, rootID, "A")

	err := f.svc.MoveNodes(context.Background(), ownerID, &models.MoveNodesRequest{
		NodeIDs:     []string{a.ID},
		NewParentID: a.ID,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMoveNodes_DeepAncestorChainRejected(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	a := f.mkFolder(t, ownerID, rootID, "A")
	b := f.mkFolder(t, ownerID, a.ID, "B")
	c := f.mkFolder(t, ownerID, b.ID, "C")

	err := f.svc.MoveNodes(context.Background(), ownerID, &models.MoveNodesRequest{
		NodeIDs:     []string{a.ID},
		NewParentID: c.ID,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestMoveNodes_FileDestinationRejected(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	a := f.mkFolder(t, ownerID, rootID, "A")
	file := f.mkFile(t, ownerID, rootID, "a.txt", "a")

	err := f.svc.MoveNodes(context.Background(), ownerID, &models.MoveNodesRequest{
		NodeIDs:     []string{a.ID},
		NewParentID: file.NodeID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMoveNodes_ForeignNodeRejected(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	otherRoot := f.mkRoot(t, strangerID)
	theirFile := f.mkFile(t, strangerID, otherRoot, "secret.txt", "s")

	err := f.svc.MoveNodes(context.Background(), ownerID, &models.MoveNodesRequest{
		NodeIDs:     []string{theirFile.NodeID},
		NewParentID: rootID,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMoveNodes_EmptySelectionRejected(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)

	err := f.svc.MoveNodes(context.Background(), ownerID, &models.MoveNodesRequest{
		NodeIDs:     nil,
		NewParentID: rootID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
