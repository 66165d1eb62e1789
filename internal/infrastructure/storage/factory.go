package storage

import (
	"context"
	"fmt"

	catalogapp "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Linker resolves a stored image name to a URL a browser can fetch.
// Only remote stores implement it; local files are served statically.
type Linker interface {
	DownloadURL(ctx context.Context, name string) (string, error)
}

// NewImageStore builds the store selected by cfg.Type
func NewImageStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (catalogapp.ImageStore, error) {
	switch cfg.Type {
	case config.StorageLocal, "":
		return NewLocalImageStore(cfg.LocalDir, cfg.PublicPrefix, logger)
	case config.StorageS3:
		store, err := NewS3ImageStore(cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
