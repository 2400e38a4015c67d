package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cirrus/internal/domain"
	"cirrus/internal/domain/models"
	"cirrus/internal/domain/repositories"
)

// PostgresNodeRepository implements the NodeRepository interface. The active
// and trash partitions are physically separate tables with an identical
// schema; every method is atomic for the single node it touches.
type PostgresNodeRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *RepositoryConfig) repositories.NodeRepository {
	return &PostgresNodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const nodeColumns = "id, owner_id, parent_id, name, is_folder, blob_ref, size, content_type, last_modified, trashed_at"

func scanNode(row interface{ Scan(dest ...any) error }) (*models.Node, error) {
	var node models.Node
	err := row.Scan(
		&node.ID,
		&node.OwnerID,
		&node.ParentID,
		&node.Name,
		&node.IsFolder,
		&node.BlobRef,
		&node.Size,
		&node.ContentType,
		&node.LastModified,
		&node.TrashedAt,
	)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// Get retrieves a node by ID from the given partition
func (r *PostgresNodeRepository) Get(ctx context.Context, p models.Partition, id string) (*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, nodeColumns, r.tables.ForPartition(p))

	node, err := scanNode(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get node: %w", err)
	}

	return node, nil
}

// ListChildren lists the nodes whose parent is parentID
func (r *PostgresNodeRepository) ListChildren(ctx context.Context, p models.Partition, parentID string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE parent_id = $1
	`, nodeColumns, r.tables.ForPartition(p))

	rows, err := r.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var nodes []models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

// ListByOwner lists every node an owner has in the partition
func (r *PostgresNodeRepository) ListByOwner(ctx context.Context, p models.Partition, ownerID string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
	`, nodeColumns, r.tables.ForPartition(p))

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list nodes by owner: %w", err)
	}
	defer rows.Close()

	var nodes []models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, *node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

// Insert stores a new node, assigning an ID when the node carries none.
// Nodes moving between partitions keep the ID they already have.
func (r *PostgresNodeRepository) Insert(ctx context.Context, p models.Partition, node *models.Node) error {
	if node.ID == "" {
		node.ID = uuid.New().String()
	}
	if node.LastModified.IsZero() {
		node.LastModified = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.ForPartition(p), nodeColumns)

	_, err := r.pool.Exec(ctx, query,
		node.ID,
		node.OwnerID,
		node.ParentID,
		node.Name,
		node.IsFolder,
		node.BlobRef,
		node.Size,
		node.ContentType,
		node.LastModified,
		node.TrashedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("node '%s': %w", node.Name, domain.ErrConflict)
		}
		return fmt.Errorf("insert node: %w", err)
	}

	return nil
}

// Update applies the non-nil fields of upd to the node
func (r *PostgresNodeRepository) Update(ctx context.Context, p models.Partition, id string, upd repositories.NodeUpdate) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.ParentID != nil {
		add("parent_id", *upd.ParentID)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.BlobRef != nil {
		add("blob_ref", *upd.BlobRef)
	}
	if upd.Size != nil {
		add("size", *upd.Size)
	}
	if upd.ContentType != nil {
		add("content_type", *upd.ContentType)
	}

	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s, last_modified = now()
		WHERE id = $%d
	`, r.tables.ForPartition(p), strings.Join(sets, ", "), len(args))

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("node %s: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("update node: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteAndReturn atomically removes a node and returns the removed record
func (r *PostgresNodeRepository) DeleteAndReturn(ctx context.Context, p models.Partition, id string) (*models.Node, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
		RETURNING %s
	`, r.tables.ForPartition(p), nodeColumns)

	node, err := scanNode(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("delete node: %w", err)
	}

	return node, nil
}
