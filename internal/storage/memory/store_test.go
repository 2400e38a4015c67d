package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cirrus/internal/domain"
)

func TestBlobStore_WriteOpenRoundTrip(t *testing.T) {
	store := NewBlobStore()

	ref, n, err := store.Write(context.Background(), "x.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	assert.Contains(t, ref, ".txt", "reference keeps the filename extension")

	rc, err := store.Open(context.Background(), ref)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestBlobStore_FailedWriteStoresNothing(t *testing.T) {
	store := NewBlobStore()

	_, _, err := store.Write(context.Background(), "x.bin", "", io.MultiReader(strings.NewReader("abc"), errReader{}))
	require.Error(t, err)
	assert.Zero(t, store.Len())
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestBlobStore_OpenMissingIsNotFound(t *testing.T) {
	store := NewBlobStore()
	_, err := store.Open(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobStore_DeleteIsIdempotent(t *testing.T) {
	store := NewBlobStore()
	ref, _, err := store.Write(context.Background(), "x.txt", "", strings.NewReader("hello"))
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), ref))
	assert.NoError(t, store.Delete(context.Background(), ref), "second delete still succeeds")
	assert.Zero(t, store.Len())
}
