package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/aviral-m/Backend-Project/internal/storage"
)

// Config holds connection settings for the S3-compatible media host.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// Storage implements storage.Storage on top of a MinIO/S3 bucket.
type Storage struct {
	client        *mclient.Client
	bucket        string
	publicBaseURL string
}

var _ storage.Storage = (*Storage)(nil)

// New creates a MinIO client and verifies the target bucket exists. The
// endpoint may carry a scheme; it is stripped and used to pick TLS.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &Storage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload streams the file to the bucket and returns its key and public URL.
func (s *Storage) Upload(ctx context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	_, err := s.client.PutObject(ctx, s.bucket, input.Key, input.Data, input.Size, mclient.PutObjectOptions{
		ContentType: input.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", input.Key, err)
	}

	return &storage.UploadResult{
		Key: input.Key,
		URL: s.publicBaseURL + "/" + input.Key,
	}, nil
}

// Delete removes an object from the bucket by its key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, mclient.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// GetURL returns the public URL for the given key after verifying the object
// exists.
func (s *Storage) GetURL(ctx context.Context, key string) (string, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		errResp := mclient.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return "", fmt.Errorf("object not found: %s", key)
		}
		return "", fmt.Errorf("stat object %q: %w", key, err)
	}

	return s.publicBaseURL + "/" + key, nil
}

// Ping checks the media host is reachable by probing the bucket.
func (s *Storage) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("ping media storage: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}
