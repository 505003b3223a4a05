package port

import (
	"context"
	"file-service/internal/core/domain"
	"io"
	"time"
)

// ObjectStore is an interface to define blob storage interactions.
// Every write is durable when the call returns.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string, metadata, tags map[string]string) (*domain.UploadResult, error)
	Download(ctx context.Context, bucket, key string) (*domain.DownloadResult, error)
	// Delete does not fail when the key is absent
	Delete(ctx context.Context, bucket, key string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, metadata map[string]string) error
	SignedUploadURL(ctx context.Context, bucket, key string, ttl time.Duration, contentType string) (string, error)
	SignedDownloadURL(ctx context.Context, bucket, key string, ttl time.Duration, overrides domain.ResponseOverrides) (string, error)
	List(ctx context.Context, bucket, prefix string, maxKeys int, continuation string) (*domain.ObjectListing, error)
}
