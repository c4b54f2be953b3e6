package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore uploads binary blobs (synthesized audio) and resolves a
// public URL for each.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// FileBlobStore stores blobs on the local filesystem and resolves URLs
// under a configured public prefix. Suitable for single-node
// deployments; swap in an object-store implementation behind the same
// interface for anything else.
type FileBlobStore struct {
	baseDir string
	baseURL string
}

// NewFileBlobStore creates a filesystem-backed blob store.
func NewFileBlobStore(baseDir, baseURL string) *FileBlobStore {
	return &FileBlobStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload implements BlobStore.
func (s *FileBlobStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	key = filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid blob key: %q", key)
	}

	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return s.baseURL + "/" + key, nil
}
