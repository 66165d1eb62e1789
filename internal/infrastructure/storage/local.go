// Package storage persists uploaded product images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	catalogapp "github.com/grocerypos/backend/internal/application/catalog"
	"go.uber.org/zap"
)

var _ catalogapp.ImageStore = (*LocalImageStore)(nil)

// LocalImageStore writes images into a directory that the HTTP server
// exposes under PublicPrefix.
type LocalImageStore struct {
	dir          string
	publicPrefix string
	logger       *zap.Logger
}

// NewLocalImageStore creates dir if needed and returns a store writing into it
func NewLocalImageStore(dir, publicPrefix string, logger *zap.Logger) (*LocalImageStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalImageStore{
		dir:          dir,
		publicPrefix: normalizePrefix(publicPrefix),
		logger:       logger,
	}, nil
}

// Put writes body to dir/name and returns its public URL path
func (s *LocalImageStore) Put(ctx context.Context, name string, body io.Reader, _ int64, _ string) (string, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	s.logger.Debug("image stored", zap.String("path", path))
	return s.publicPrefix + "/" + name, nil
}

// Remove deletes dir/name; a missing file is not an error
func (s *LocalImageStore) Remove(ctx context.Context, name string) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// Dir returns the directory images are written to
func (s *LocalImageStore) Dir() string {
	return s.dir
}

// PublicPrefix returns the URL path images are served from
func (s *LocalImageStore) PublicPrefix() string {
	return s.publicPrefix
}

// pathFor rejects names that would escape the upload directory
func (s *LocalImageStore) pathFor(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return "/uploads"
	}
	if !strings.HasPrefix(prefix, "/") && !strings.Contains(prefix, "://") {
		prefix = "/" + prefix
	}
	return prefix
}
