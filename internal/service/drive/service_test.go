package drive

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/services"
	memoryRepo "cirrus/internal/repository/memory"
	"cirrus/internal/service/auth"
	memoryStore "cirrus/internal/storage/memory"
)

const (
	ownerID    = "owner-1"
	strangerID = "owner-2"
)

type fixture struct {
	svc   services.DriveService
	nodes *memoryRepo.MemoryNodeRepository
	blobs *memoryStore.MemoryBlobStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	nodes := memoryRepo.NewNodeRepository()
	blobs := memoryStore.NewBlobStore()
	guard := auth.NewOwnerAuthorizer(nodes)
	logger := slog.New(slog.DiscardHandler)
	return &fixture{
		svc:   NewService(nodes, blobs, guard, logger),
		nodes: nodes,
		blobs: blobs,
	}
}

// mkRoot provisions a drive root for the given owner.
func (f *fixture) mkRoot(t *testing.T, owner string) string {
	t.Helper()
	id, err := f.svc.CreateRootFolder(context.Background(), owner)
	require.NoError(t, err)
	return id
}

// mkFolder creates a folder under parent.
func (f *fixture) mkFolder(t *testing.T, owner, parent, name string) *models.Node {
	t.Helper()
	folder, err := f.svc.CreateFolder(context.Background(), owner, &models.CreateFolderRequest{
		ParentID: parent,
		Name:     name,
	})
	require.NoError(t, err)
	return folder
}

// mkFile uploads a small file under parent.
func (f *fixture) mkFile(t *testing.T, owner, parent, name, content string) *models.UploadResult {
	t.Helper()
	res, err := f.svc.Upload(context.Background(), owner, parent, name, strings.NewReader(content))
	require.NoError(t, err)
	return res
}

func TestCreateRootFolder(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	require.NotEmpty(t, rootID)

	root, err := f.nodes.Get(context.Background(), models.PartitionActive, rootID)
	require.NoError(t, err)
	assert.Equal(t, RootFolderName, root.Name)
	assert.Equal(t, models.RootParentID, root.ParentID)
	assert.True(t, root.IsFolder)
	assert.True(t, root.IsRoot())
}

func TestCreateFolder(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)

	folder := f.mkFolder(t, ownerID, rootID, "Documents")
	assert.Equal(t, rootID, folder.ParentID)
	assert.Equal(t, ownerID, folder.OwnerID)
	assert.True(t, folder.IsFolder)
}

func TestCreateFolder_InvalidNames(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)

	for _, name := range []string{"", "   ", "a/b", "nul\x00byte", strings.Repeat("x", 300)} {
		_, err := f.svc.CreateFolder(context.Background(), ownerID, &models.CreateFolderRequest{
			ParentID: rootID,
			Name:     name,
		})
		assert.ErrorIs(t, err, domain.ErrValidation, "name %q should be rejected", name)
	}
}

func TestCreateFolder_ParentMissing(t *testing.T) {
	f := newFixture(t)
	f.mkRoot(t, ownerID)

	_, err := f.svc.CreateFolder(context.Background(), ownerID, &models.CreateFolderRequest{
		ParentID: "no-such-node",
		Name:     "orphan",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateFolder_ForeignParent(t *testing.T) {
	f := newFixture(t)
	f.mkRoot(t, ownerID)
	otherRoot := f.mkRoot(t, strangerID)

	_, err := f.svc.CreateFolder(context.Background(), ownerID, &models.CreateFolderRequest{
		ParentID: otherRoot,
		Name:     "intruder",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateFolder_FileParent(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	file := f.mkFile(t, ownerID, rootID, "a.txt", "a")

	_, err := f.svc.CreateFolder(context.Background(), ownerID, &models.CreateFolderRequest{
		ParentID: file.NodeID,
		Name:     "inside-a-file",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListChildren(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	f.mkFolder(t, ownerID, rootID, "Documents")
	f.mkFile(t, ownerID, rootID, "a.txt", "a")

	children, err := f.svc.ListChildren(context.Background(), ownerID, rootID)
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestListChildren_EmptyFolderIsEmptySlice(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)

	children, err := f.svc.ListChildren(context.Background(), ownerID, rootID)
	require.NoError(t, err)
	assert.NotNil(t, children)
	assert.Empty(t, children)
}

func TestListChildren_ForeignFolder(t *testing.T) {
	f := newFixture(t)
	f.mkRoot(t, ownerID)
	otherRoot := f.mkRoot(t, strangerID)

	_, err := f.svc.ListChildren(context.Background(), ownerID, otherRoot)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)

	res := f.mkFile(t, ownerID, rootID, "report.txt", "hello world")
	assert.EqualValues(t, 11, res.Size)
	assert.NotEmpty(t, res.BlobRef)

	node, err := f.nodes.Get(context.Background(), models.PartitionActive, res.NodeID)
	require.NoError(t, err)
	assert.Equal(t, res.BlobRef, node.BlobRef)
	assert.EqualValues(t, 11, node.Size)
	assert.Equal(t, "text/plain; charset=utf-8", node.ContentType)
	assert.False(t, node.IsFolder)
}

// failingReader errors out partway through the stream.
type failingReader struct {
	data []byte
	read int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.read >= len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	n := copy(p, r.data[r.read:])
	r.read += n
	return n, nil
}

func TestUpload_FailedStreamLeavesNothing(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)

	_, err := f.svc.Upload(context.Background(), ownerID, rootID, "broken.bin", &failingReader{data: []byte("abc")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIO)

	children, err := f.svc.ListChildren(context.Background(), ownerID, rootID)
	require.NoError(t, err)
	assert.Empty(t, children, "provisional node must be rolled back")
	assert.Zero(t, f.blobs.Len(), "no blob may survive a failed upload")
}

func TestUpload_ForeignParent(t *testing.T) {
	f := newFixture(t)
	otherRoot := f.mkRoot(t, strangerID)

	_, err := f.svc.Upload(context.Background(), ownerID, otherRoot, "a.txt", strings.NewReader("a"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, f.blobs.Len())
}

func TestOpenFile(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	res := f.mkFile(t, ownerID, rootID, "x.txt", "hello")

	node, rc, err := f.svc.OpenFile(context.Background(), ownerID, res.NodeID)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "x.txt", node.Name)
}

func TestOpenFile_Folder(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	folder := f.mkFolder(t, ownerID, rootID, "Documents")

	_, _, err := f.svc.OpenFile(context.Background(), ownerID, folder.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOpenFile_Foreign(t *testing.T) {
	f := newFixture(t)
	rootID := f.mkRoot(t, ownerID)
	res := f.mkFile(t, ownerID, rootID, "x.txt", "hello")

	_, _, err := f.svc.OpenFile(context.Background(), strangerID, res.NodeID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
