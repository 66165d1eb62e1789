package catalog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxImageSize is the largest accepted upload (5MB)
const DefaultMaxImageSize int64 = 5 * 1024 * 1024

// AllowedImageExtensions is the whitelist of accepted file extensions
var AllowedImageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// AllowedImageContentTypes is the whitelist of accepted MIME types.
// SVG is excluded because it can carry script
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageStore persists uploaded product images and returns the path they
// are served from
type ImageStore interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, name string) error
}

// ImageServiceConfig holds configuration for the image service
type ImageServiceConfig struct {
	// MaxSize is the maximum upload size in bytes
	MaxSize int64
}

// DefaultImageServiceConfig returns the default configuration
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{MaxSize: DefaultMaxImageSize}
}

// UploadImageRequest describes one uploaded file
type UploadImageRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageService validates and stores product images
type ImageService struct {
	store  ImageStore
	config ImageServiceConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(store ImageStore, config ImageServiceConfig, logger *zap.Logger) *ImageService {
	if config.MaxSize <= 0 {
		config.MaxSize = DefaultMaxImageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{
		store:  store,
		config: config,
		now:    time.Now,
		logger: logger,
	}
}

// Upload validates the file and stores it as product_<unix-ms><ext>
func (s *ImageService) Upload(ctx context.Context, req *UploadImageRequest) (*UploadImageResponse, error) {
	if req == nil || req.Body == nil || req.Filename == "" {
		return nil, ErrNoFileUploaded
	}
	if err := ValidateImage(req.Filename, req.ContentType); err != nil {
		return nil, err
	}
	if req.Size > s.config.MaxSize {
		return nil, ErrImageTooLarge
	}

	name := s.storageName(req.Filename)
	// the request may under-report its size; cap what we copy
	body := &countingReader{r: io.LimitReader(req.Body, s.config.MaxSize+1)}
	url, err := s.store.Put(ctx, name, body, req.Size, normalizeContentType(req.ContentType))
	if err != nil {
		return nil, fmt.Errorf("store image %s: %w", name, err)
	}
	if body.n > s.config.MaxSize {
		s.remove(ctx, name)
		return nil, ErrImageTooLarge
	}

	s.logger.Info("product image uploaded",
		zap.String("file", name),
		zap.Int64("size", req.Size),
	)
	return &UploadImageResponse{URL: url}, nil
}

// ValidateImage checks both the file extension and the MIME type
func ValidateImage(filename, contentType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedImageExtensions[ext] {
		return ErrInvalidImageType
	}
	if !AllowedImageContentTypes[normalizeContentType(contentType)] {
		return ErrInvalidImageType
	}
	return nil
}

func (s *ImageService) remove(ctx context.Context, name string) {
	if err := s.store.Remove(ctx, name); err != nil {
		s.logger.Warn("failed to remove rejected image",
			zap.String("file", name),
			zap.Error(err),
		)
	}
}

func (s *ImageService) storageName(filename string) string {
	return fmt.Sprintf("product_%d%s", s.now().UnixMilli(), filepath.Ext(filepath.Base(filename)))
}

// normalizeContentType strips parameters such as "; charset=binary"
func normalizeContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
