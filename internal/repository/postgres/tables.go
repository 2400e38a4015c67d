package postgres

import (
	"fmt"

	"cirrus/internal/domain/models"
)

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Nodes      string
	TrashNodes string
	Users      string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Nodes:      fmt.Sprintf("%snodes", prefix),
		TrashNodes: fmt.Sprintf("%strash_nodes", prefix),
		Users:      fmt.Sprintf("%susers", prefix),
	}
}

// ForPartition returns the node table backing the given partition.
func (t *TableNames) ForPartition(p models.Partition) string {
	if p == models.PartitionTrash {
		return t.TrashNodes
	}
	return t.Nodes
}
