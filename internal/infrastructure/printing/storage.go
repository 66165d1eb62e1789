package printing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Storage saves rendered receipts
type Storage interface {
	// Store writes a rendered receipt and returns where it went
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Get opens a stored receipt by its relative path
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes a stored receipt
	Delete(ctx context.Context, path string) error
	// CleanupOlderThan removes receipts older than age
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// StoreRequest contains the parameters for storing a receipt
type StoreRequest struct {
	// Name is the file name without extension
	Name string
	// Extension including the dot, e.g. ".pdf"
	Extension string
	// Data is the rendered receipt
	Data []byte
	// IssuedAt picks the year/month directory (default: now)
	IssuedAt time.Time
}

// StoreResult contains the result of storing a receipt
type StoreResult struct {
	// Path is relative to the storage base
	Path string
	// FullPath is the file on disk
	FullPath string
	// Size is the file size in bytes
	Size int64
}

// FileStorageConfig contains configuration for file system storage
type FileStorageConfig struct {
	// BasePath is the root directory for receipts (default: receipts)
	BasePath string
	// Logger for operations
	Logger *zap.Logger
}

// FileStorage keeps receipts on the local file system
type FileStorage struct {
	config *FileStorageConfig
	logger *zap.Logger
}

// receiptExtensions are the files CleanupOlderThan may delete
var receiptExtensions = []string{".pdf", ".txt"}

// NewFileStorage creates the base directory and returns the storage
func NewFileStorage(config *FileStorageConfig) (*FileStorage, error) {
	if config == nil {
		config = &FileStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "receipts"
	}

	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileStorage{config: config, logger: logger}, nil
}

// Store writes the receipt to {base}/{year}/{month}/{name}{ext}
func (s *FileStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if req == nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if req.Name == "" || containsDotDot(req.Name) || strings.ContainsAny(req.Name, `/\`) {
		return nil, NewRenderError(ErrCodeStorageFailed, "invalid file name: "+req.Name, nil)
	}
	if len(req.Data) == 0 {
		return nil, NewRenderError(ErrCodeStorageFailed, "receipt data is empty", nil)
	}

	issued := req.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}

	relDir := filepath.Join(fmt.Sprintf("%d", issued.Year()), fmt.Sprintf("%02d", issued.Month()))
	dir := filepath.Join(s.config.BasePath, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}

	fileName := req.Name + req.Extension
	fullPath := filepath.Join(dir, fileName)
	if err := os.WriteFile(fullPath, req.Data, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write receipt file", err)
	}

	s.logger.Info("receipt stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.Data)))

	return &StoreResult{
		Path:     filepath.ToSlash(filepath.Join(relDir, fileName)),
		FullPath: fullPath,
		Size:     int64(len(req.Data)),
	}, nil
}

// Get opens a stored receipt by its relative path
func (s *FileStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRenderError(ErrCodeStorageFailed, "receipt not found", err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open receipt file", err)
	}
	return file, nil
}

// Delete removes a stored receipt; a missing file is not an error
func (s *FileStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return NewRenderError(ErrCodeStorageFailed, "failed to delete receipt file", err)
	}

	s.logger.Info("receipt deleted", zap.String("path", path))
	return nil
}

// CleanupOlderThan removes receipt files older than age
func (s *FileStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	err := filepath.Walk(s.config.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || !slices.Contains(receiptExtensions, filepath.Ext(path)) {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				deleted++
				s.logger.Debug("deleted old receipt", zap.String("path", path))
			}
		}
		return nil
	})
	if err != nil {
		return deleted, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("receipt cleanup completed",
		zap.Int("deleted", deleted),
		zap.Duration("age", age))

	return deleted, nil
}

// BasePath returns the storage root
func (s *FileStorage) BasePath() string {
	return s.config.BasePath
}

// resolve maps a relative path to a file under BasePath
func (s *FileStorage) resolve(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	if filepath.IsAbs(cleanPath) || containsDotDot(path) {
		s.logger.Warn("blocked potentially malicious path", zap.String("path", path))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.config.BasePath, cleanPath))
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("path", path),
			zap.String("absPath", absPath))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	return absPath, nil
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	return slices.Contains(parts, "..")
}

var _ Storage = (*FileStorage)(nil)
