package repositories

import (
	"context"
	"io"
)

// BlobStore is opaque content storage for file payloads. Blobs are owned
// exclusively by their referencing node and only ever deleted together with
// it; moves and soft-deletes never touch the blob.
type BlobStore interface {
	// Write streams content into a new blob and returns the assigned
	// reference and the number of bytes consumed. The reader is drained at
	// the rate the store accepts writes; the payload is never buffered
	// whole in memory. Cancelling ctx aborts the write and no blob is
	// retained.
	Write(ctx context.Context, name, contentType string, content io.Reader) (ref string, size int64, err error)

	// Open returns a reader over the blob's content. The caller closes it.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)

	// Delete removes a blob. Deleting an absent reference succeeds: an
	// already-gone blob is a satisfied postcondition, not an error.
	Delete(ctx context.Context, ref string) error
}
