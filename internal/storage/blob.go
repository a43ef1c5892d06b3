package storage

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrBadBlobPath = errors.New("bad blob path")

// DiskBlobStore writes blobs below dir and issues URLs under
// baseURL + "/blobs/". The HTTP router serves dir read-only at /blobs.
type DiskBlobStore struct {
	dir     string
	baseURL string
}

func NewDiskBlobStore(dir, baseURL string) *DiskBlobStore {
	return &DiskBlobStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *DiskBlobStore) Store(ctx context.Context, blobPath string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Clean(blobPath)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "../") {
		return "", ErrBadBlobPath
	}

	full := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/blobs/" + clean, nil
}
