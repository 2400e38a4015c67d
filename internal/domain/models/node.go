package models

import (
	"time"
)

// RootParentID is the sentinel parent value carried by a drive root.
// A node whose ParentID equals this sentinel has no parent.
const RootParentID = ""

// Partition names the namespace a node currently resides in. Every node
// belongs to exactly one partition at any time.
type Partition string

const (
	PartitionActive Partition = "active"
	PartitionTrash  Partition = "trash"
)

// Node is a folder or file entry in the hierarchical namespace.
//
// Folder nodes never carry a blob reference; file nodes gain one when their
// upload commits, and it is never reassigned afterwards. TrashedAt is set
// only while the node resides in the trash partition.
type Node struct {
	ID           string     `json:"id" db:"id"`
	OwnerID      string     `json:"owner_id" db:"owner_id"`
	ParentID     string     `json:"parent_id" db:"parent_id"` // RootParentID = drive root
	Name         string     `json:"name" db:"name"`
	IsFolder     bool       `json:"is_folder" db:"is_folder"`
	BlobRef      string     `json:"blob_ref,omitempty" db:"blob_ref"`
	Size         int64      `json:"size" db:"size"`
	ContentType  string     `json:"content_type,omitempty" db:"content_type"`
	LastModified time.Time  `json:"last_modified" db:"last_modified"`
	TrashedAt    *time.Time `json:"trashed_at,omitempty" db:"trashed_at"`
}

// IsRoot reports whether the node is a drive root.
func (n *Node) IsRoot() bool {
	return n.ParentID == RootParentID
}

type CreateFolderRequest struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

type MoveNodesRequest struct {
	NodeIDs     []string `json:"node_ids"`
	NewParentID string   `json:"new_parent_id"`
}

type NodeIDsRequest struct {
	NodeIDs []string `json:"node_ids"`
}

// UploadResult describes a committed upload: the finalized file node, its
// blob reference and the number of bytes streamed into the blob store.
type UploadResult struct {
	NodeID  string `json:"node_id"`
	BlobRef string `json:"blob_ref"`
	Size    int64  `json:"size"`
}
