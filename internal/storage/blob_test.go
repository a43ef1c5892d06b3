package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskBlobStore_WritesAndIssuesURL(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskBlobStore(dir, "http://localhost:8080/")

	url, err := s.Store(context.Background(), "handy/u1/123-abc.webm", []byte("audio"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/blobs/handy/u1/123-abc.webm", url)

	data, err := os.ReadFile(filepath.Join(dir, "handy", "u1", "123-abc.webm"))
	require.NoError(t, err)
	require.Equal(t, []byte("audio"), data)
}

func TestDiskBlobStore_RejectsTraversal(t *testing.T) {
	s := NewDiskBlobStore(t.TempDir(), "http://localhost:8080")

	for _, p := range []string{"../escape.webm", "/abs.webm", ".", "a/../../b.webm"} {
		_, err := s.Store(context.Background(), p, []byte("x"))
		require.ErrorIs(t, err, ErrBadBlobPath, "path %q", p)
	}
}

func TestDiskBlobStore_CanceledContext(t *testing.T) {
	s := NewDiskBlobStore(t.TempDir(), "http://localhost:8080")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Store(ctx, "room/u/1.webm", []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}
