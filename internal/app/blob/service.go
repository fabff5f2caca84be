/*
Package blob stores uploaded file bytes in an S3-compatible object store.

The core relay never inspects file contents; this package is the collaborator
that persists and serves blobs under opaque keys, while the hub only ever
sees file metadata.
*/
package blob

import (
	"context"
	"io"
)

// ServiceConfig holds the configuration required to connect to the blob store.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// Service defines the public interface for blob storage.
type Service interface {
	// Upload stores the blob read from body under the given key.
	Upload(ctx context.Context, key string, mimeType string, size int64, body io.Reader) error

	// Download opens the blob stored under key. The caller must close the
	// returned reader. A missing key yields ErrNotFound.
	Download(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)

	// Delete removes the blob stored under key.
	Delete(ctx context.Context, key string) error
}

// NewService is the factory function for Service.
// Currently only S3-compatible implementations are supported.
func NewService(cfg ServiceConfig) (Service, error) {
	return newS3Client(cfg)
}
