package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	catalogapp "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ catalogapp.ImageStore = (*S3ImageStore)(nil)

// S3ImageStore keeps images in an S3-compatible bucket (AWS S3, MinIO, RustFS).
// Put returns the same public path as the local store; the HTTP layer
// redirects that path to a presigned download URL.
type S3ImageStore struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	publicPrefix      string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3Option configures an S3ImageStore
type S3Option func(*S3ImageStore)

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3ImageStore) {
		s.logger = logger
	}
}

// WithPresignExpiration overrides how long download links stay valid
func WithPresignExpiration(d time.Duration) S3Option {
	return func(s *S3ImageStore) {
		s.presignExpiration = d
	}
}

// NewS3ImageStore builds a client from static credentials and a custom endpoint
func NewS3ImageStore(cfg *config.StorageConfig, opts ...S3Option) (*S3ImageStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	switch {
	case cfg.Bucket == "":
		return nil, errors.New("storage bucket is required")
	case cfg.AccessKey == "":
		return nil, errors.New("storage access key is required")
	case cfg.SecretKey == "":
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := &S3ImageStore{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		publicPrefix:      normalizePrefix(cfg.PublicPrefix),
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.presignExpiration <= 0 {
		store.presignExpiration = 15 * time.Minute
	}
	return store, nil
}

// endpointURL adds a scheme to bare host:port endpoints; empty means AWS itself
func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *S3ImageStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating image bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads the image under key name.
// The body is buffered so the SDK can sign and retry it.
func (s *S3ImageStore) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error) {
	if name == "" {
		return "", errors.New("object name is required")
	}
	buf := bytes.NewBuffer(make([]byte, 0, max(size, 0)))
	if _, err := io.Copy(buf, body); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return s.publicPrefix + "/" + name, nil
}

// Remove deletes the object
func (s *S3ImageStore) Remove(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("object name is required")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// DownloadURL returns a presigned GET URL for the object
func (s *S3ImageStore) DownloadURL(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("object name is required")
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, nil
}

// Bucket returns the bucket name
func (s *S3ImageStore) Bucket() string {
	return s.bucket
}
