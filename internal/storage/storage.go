package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"festival-media-center/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/linxGnu/goseaweedfs"
)

// StorageProvider represents the type of storage being used
type StorageProvider string

const (
	SeaweedFS StorageProvider = "seaweedfs"
	S3        StorageProvider = "s3"
)

// Storage holds the catalog's media objects. Catalog locators that are object
// keys rather than absolute URLs resolve through it.
type Storage interface {
	Upload(ctx context.Context, reader io.Reader, key, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	GetPublicURL(key string) string
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// IsObjectKey reports whether a catalog locator names a stored object. Absolute
// URLs and site-relative paths are served as they are.
func IsObjectKey(locator string) bool {
	if locator == "" || strings.HasPrefix(locator, "/") {
		return false
	}
	u, err := url.Parse(locator)
	return err == nil && u.Scheme == "" && u.Host == ""
}

// CleanKey normalizes an object key
func CleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

// S3Storage implements the Storage interface for AWS S3
type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// Upload uploads an object to S3
func (s *S3Storage) Upload(ctx context.Context, reader io.Reader, key, contentType string) (string, error) {
	key = CleanKey(key)
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	input := &s3.PutObjectInput{
		Body:   bytes.NewReader(data),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return key, nil
}

// Download downloads an object from S3
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(CleanKey(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download file from S3: %w", err)
	}
	return result.Body, nil
}

// GetPublicURL returns the public URL for an object in S3
func (s *S3Storage) GetPublicURL(key string) string {
	key = CleanKey(key)
	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.publicURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

// GetPresignedURL signs a time-limited GET for an object in S3
func (s *S3Storage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(CleanKey(key)),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiration
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return request.URL, nil
}

// SeaweedFSStorage implements the Storage interface for a SeaweedFS filer
type SeaweedFSStorage struct {
	client    *goseaweedfs.Filer
	publicURL string
}

// Upload implements Storage interface for SeaweedFSStorage
func (s *SeaweedFSStorage) Upload(ctx context.Context, reader io.Reader, key, contentType string) (string, error) {
	// the filer client does not stream
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key = CleanKey(key)
	if _, err := s.client.Upload(bytes.NewReader(data), int64(len(data)), "/"+key, "default", ""); err != nil {
		return "", fmt.Errorf("failed to upload to SeaweedFS: %w", err)
	}
	return key, nil
}

// Download downloads an object from SeaweedFS
func (s *SeaweedFSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := s.client.Get("/"+CleanKey(key), url.Values{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download file from SeaweedFS: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// GetPublicURL returns the public URL for an object in SeaweedFS
func (s *SeaweedFSStorage) GetPublicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, CleanKey(key))
}

// GetPresignedURL for SeaweedFS appends an expiry hint; the filer itself
// enforces no signature
func (s *SeaweedFSStorage) GetPresignedURL(_ context.Context, key string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration).Unix()
	return fmt.Sprintf("%s?exp=%d", s.GetPublicURL(key), expirationTime), nil
}

// New creates the configured provider. It returns nil, nil when no provider
// is configured and every catalog locator is a plain URL.
func New(cfg config.StorageConfig) (Storage, error) {
	switch StorageProvider(strings.ToLower(cfg.Provider)) {
	case "":
		return nil, nil
	case S3:
		return NewS3Storage(cfg.S3)
	case SeaweedFS:
		s, err := NewSeaweedFSStorage(cfg.SeaweedFS)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(cfg config.S3Config) (*S3Storage, error) {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
	}, nil
}

// NewSeaweedFSStorage creates a new SeaweedFS storage instance
func NewSeaweedFSStorage(cfg config.SeaweedFSConfig) (*SeaweedFSStorage, error) {
	filerURL := cfg.Filer
	if filerURL == "" {
		filerURL = cfg.MasterURL
	}
	client, err := goseaweedfs.NewFiler(filerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SeaweedFS client: %w", err)
	}

	return &SeaweedFSStorage{
		client:    client,
		publicURL: strings.TrimSuffix(filerURL, "/"),
	}, nil
}
