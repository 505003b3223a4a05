package minio

import (
	"context"
	"file-service/internal/config"
	"file-service/internal/core/domain"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter, creating bucket when missing
func NewAdapter(ctx context.Context, cfg config.MinioConfig, bucket string, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("bucket created", slog.String("bucket", bucket))
	}

	return &Adapter{client: client, config: cfg, logger: logger}, nil
}

// Upload puts an object, the write is complete when it returns
func (a *Adapter) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string, metadata, tags map[string]string) (*domain.UploadResult, error) {
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
		UserTags:     tags,
	}

	info, err := a.client.PutObject(ctx, bucket, key, body, size, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to put object %s: %w", domain.ErrStorage, key, err)
	}

	return &domain.UploadResult{Key: info.Key, ETag: info.ETag, VersionID: info.VersionID}, nil
}

// Download opens an object stream
func (a *Adapter) Download(ctx context.Context, bucket, key string) (*domain.DownloadResult, error) {
	object, err := a.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, a.wrapErr("failed to get object", key, err)
	}

	// GetObject is lazy, Stat surfaces a missing key
	info, err := object.Stat()
	if err != nil {
		_ = object.Close()
		return nil, a.wrapErr("failed to stat object", key, err)
	}

	return &domain.DownloadResult{
		Body:        object,
		ContentType: info.ContentType,
		Length:      info.Size,
		Metadata:    info.UserMetadata,
	}, nil
}

// Delete deletes an object from storage
func (a *Adapter) Delete(ctx context.Context, bucket, key string) error {
	err := a.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("%w: failed to delete object %s: %w", domain.ErrStorage, key, err)
	}

	a.logger.Debug("object deleted",
		slog.String("fileKey", key),
		slog.String("bucket", bucket))

	return nil
}

// Exists reports whether key is present
func (a *Adapter) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := a.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: failed to get object info: %w", domain.ErrStorage, err)
}

// Copy copies an object server side, replacing metadata when given
func (a *Adapter) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, metadata map[string]string) error {
	dst := minio.CopyDestOptions{Bucket: dstBucket, Object: dstKey}
	if len(metadata) > 0 {
		dst.UserMetadata = metadata
		dst.ReplaceMetadata = true
	}

	_, err := a.client.CopyObject(ctx, dst, minio.CopySrcOptions{Bucket: srcBucket, Object: srcKey})
	if err != nil {
		return a.wrapErr("failed to copy object", srcKey, err)
	}
	return nil
}

// SignedUploadURL generates a presigned PUT bound to contentType
func (a *Adapter) SignedUploadURL(ctx context.Context, bucket, key string, ttl time.Duration, contentType string) (string, error) {
	headers := make(http.Header)
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	presignedURL, err := a.client.PresignHeader(ctx, http.MethodPut, bucket, key, ttl, nil, headers)
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate pre-signed URL: %w", domain.ErrStorage, err)
	}
	return presignedURL.String(), nil
}

// SignedDownloadURL generates a presigned GET with optional response header overrides
func (a *Adapter) SignedDownloadURL(ctx context.Context, bucket, key string, ttl time.Duration, overrides domain.ResponseOverrides) (string, error) {
	params := make(url.Values)
	if overrides.ContentType != "" {
		params.Set("response-content-type", overrides.ContentType)
	}
	if overrides.ContentDisposition != "" {
		params.Set("response-content-disposition", overrides.ContentDisposition)
	}

	presignedURL, err := a.client.PresignedGetObject(ctx, bucket, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate presigned download URL: %w", domain.ErrStorage, err)
	}
	return presignedURL.String(), nil
}

// List lists objects under prefix, continuation is the last key of the previous page
func (a *Adapter) List(ctx context.Context, bucket, prefix string, maxKeys int, continuation string) (*domain.ObjectListing, error) {
	if maxKeys <= 0 || maxKeys > 1000 {
		maxKeys = 1000 //max size for minio
	}

	// cancelling stops the listing goroutine once the page is full
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := a.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:     prefix,
		Recursive:  true,
		StartAfter: continuation,
		MaxKeys:    maxKeys,
	})

	listing := &domain.ObjectListing{Objects: make([]domain.ObjectInfo, 0, maxKeys)}
	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("%w: failed to list objects: %w", domain.ErrStorage, object.Err)
		}
		if len(listing.Objects) == maxKeys {
			listing.IsTruncated = true
			break
		}
		listing.Objects = append(listing.Objects, domain.ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			ETag:         object.ETag,
			LastModified: object.LastModified,
		})
	}

	if listing.IsTruncated {
		listing.NextContinuation = listing.Objects[len(listing.Objects)-1].Key
	}
	return listing, nil
}

func (a *Adapter) wrapErr(msg, key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", domain.ErrObjectNotFound, key)
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorage, msg, key, err)
}

func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
