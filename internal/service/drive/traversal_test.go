package drive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cirrus/internal/domain/models"
)

func TestWalkSubtree_VisitsWholeTree(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	docs := f.mkFolder(t, ownerID, rootID, "Documents")
	f.mkFolder(t, ownerID, docs.ID, "Sub")
	f.mkFile(t, ownerID, rootID, "a.txt", "a")

	svc := f.svc.(*driveService)
	var names []string
	err := svc.walkSubtree(context.Background(), models.PartitionActive, []string{rootID}, func(n *models.Node) error {
		names = append(names, n.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, names, 4)
	assert.Equal(t, RootFolderName, names[0], "a frontier node is visited before its descendants")
}

func TestWalkSubtree_TerminatesOnCorruptedParentLoop(t *testing.T) {
	f := newFixture(t)

	// Build a deliberately broken pair of nodes that reference each other.
	a := &models.Node{ID: "loop-a", OwnerID: ownerID, ParentID: "loop-b", Name: "A", IsFolder: true}
	b := &models.Node{ID: "loop-b", OwnerID: ownerID, ParentID: "loop-a", Name: "B", IsFolder: true}
	require.NoError(t, f.nodes.Insert(context.Background(), models.PartitionActive, a))
	require.NoError(t, f.nodes.Insert(context.Background(), models.PartitionActive, b))

	svc := f.svc.(*driveService)
	var visits int
	err := svc.walkSubtree(context.Background(), models.PartitionActive, []string{"loop-a"}, func(n *models.Node) error {
		visits++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, visits, "each node is visited exactly once despite the loop")
}

func TestWalkSubtree_SkipsVanishedNodes(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	f.mkFolder(t, ownerID, rootID, "Documents")

	// A frontier ID that no longer exists stands in for a node purged
	// between discovery and the walk reaching it.
	svc := f.svc.(*driveService)
	var names []string
	err := svc.walkSubtree(context.Background(), models.PartitionActive, []string{rootID, "vanished"}, func(n *models.Node) error {
		names = append(names, n.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, names, 2, "a vanished node is skipped, not an error")
}
