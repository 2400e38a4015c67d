// Package memory implements the BlobStore over a map. It backs the service
// test suites and preserves the contract the S3 store provides: streamed
// consumption of the content reader, idempotent deletes, and no blob left
// behind after a failed write.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"cirrus/internal/domain"
	"cirrus/internal/domain/repositories"
)

type blob struct {
	name        string
	contentType string
	data        []byte
}

// MemoryBlobStore implements repositories.BlobStore. Safe for concurrent use.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// NewBlobStore creates an empty in-memory blob store
func NewBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: map[string]blob{}}
}

// Write drains the reader into a new blob and returns its reference. A read
// error discards everything consumed so far; nothing is stored.
func (s *MemoryBlobStore) Write(ctx context.Context, name, contentType string, content io.Reader) (string, int64, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, content)
	if err != nil {
		return "", 0, fmt.Errorf("upload blob: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", 0, fmt.Errorf("upload blob: %w", err)
	}

	// Matches the S3 store's key shape: the filename extension rides along
	// on the reference.
	ref := uuid.New().String() + filepath.Ext(name)

	s.mu.Lock()
	s.blobs[ref] = blob{name: name, contentType: contentType, data: buf.Bytes()}
	s.mu.Unlock()

	return ref, n, nil
}

// Open returns a reader over the blob's content
func (s *MemoryBlobStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	s.mu.RLock()
	b, ok := s.blobs[ref]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// Delete removes a blob. Deleting an absent reference succeeds.
func (s *MemoryBlobStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	delete(s.blobs, ref)
	s.mu.Unlock()
	return nil
}

// Len reports how many blobs the store holds. Test helper.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

var _ repositories.BlobStore = (*MemoryBlobStore)(nil)
