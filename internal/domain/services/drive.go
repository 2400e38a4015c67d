package services

import (
	"context"
	"io"

	"cirrus/internal/domain/models"
)

// DriveService handles the drive namespace: folder creation, listing,
// moves, the trash lifecycle, uploads and archive downloads. Every
// operation asserts caller ownership before acting.
//
// Multi-node operations (trash, purge, move, archive) are not atomic as a
// whole; they are safe to retry and re-validate against the current tree
// shape instead of holding locks.
type DriveService interface {
	// ListChildren lists the nodes directly under an owned folder
	ListChildren(ctx context.Context, callerID, parentID string) ([]models.Node, error)

	// CreateFolder creates a folder under an owned parent folder
	CreateFolder(ctx context.Context, callerID string, req *models.CreateFolderRequest) (*models.Node, error)

	// CreateRootFolder provisions a drive root for a new owner and returns
	// its ID
	CreateRootFolder(ctx context.Context, ownerID string) (string, error)

	// Upload streams content into the blob store and commits a file node
	// referencing it. A failed stream leaves no provisional node behind.
	Upload(ctx context.Context, callerID, parentID, name string, content io.Reader) (*models.UploadResult, error)

	// OpenFile returns a file node and a reader over its blob content
	OpenFile(ctx context.Context, callerID, nodeID string) (*models.Node, io.ReadCloser, error)

	// MoveNodes reparents nodes under a new owned parent folder, rejecting
	// moves that would make a node its own ancestor
	MoveNodes(ctx context.Context, callerID string, req *models.MoveNodesRequest) error

	// MoveToTrash soft-deletes whole subtrees. The requested nodes must
	// share a parent.
	MoveToTrash(ctx context.Context, callerID string, nodeIDs []string) error

	// ListTrash lists every trashed node the caller owns
	ListTrash(ctx context.Context, callerID string) ([]models.Node, error)

	// PurgeFromTrash permanently removes trashed subtrees together with
	// their blobs. Already-purged IDs are skipped, not errors.
	PurgeFromTrash(ctx context.Context, callerID string, nodeIDs []string) error

	// BuildArchive streams a zip of the requested same-parent nodes and
	// their subtrees into w
	BuildArchive(ctx context.Context, callerID string, nodeIDs []string, w io.Writer) error
}
