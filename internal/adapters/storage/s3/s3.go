package s3

import (
	"context"
	"errors"
	"file-service/internal/config"
	"file-service/internal/core/domain"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Adapter is an adapter for AWS S3 and S3 compatible services
type Adapter struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	logger        *slog.Logger
}

// NewAdapter returns Adapter, creating bucket when missing
func NewAdapter(ctx context.Context, cfg config.S3Config, bucket string, logger *slog.Logger) (*Adapter, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	a := &Adapter{client: client, presignClient: s3.NewPresignClient(client), logger: logger}
	if err := a.ensureBucket(ctx, bucket); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adapter) ensureBucket(ctx context.Context, bucket string) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", bucket, err)
	}

	a.logger.Info("bucket created", slog.String("bucket", bucket))
	return nil
}

// Upload puts an object, the write is complete when it returns
func (a *Adapter) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string, metadata, tags map[string]string) (*domain.UploadResult, error) {
	input := &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     body,
		Metadata: metadata,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if len(tags) > 0 {
		input.Tagging = aws.String(encodeTags(tags))
	}

	out, err := a.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to put object %s: %w", domain.ErrStorage, key, err)
	}

	return &domain.UploadResult{
		Key:       key,
		ETag:      strings.Trim(aws.ToString(out.ETag), `"`),
		VersionID: aws.ToString(out.VersionId),
	}, nil
}

// Download opens an object stream
func (a *Adapter) Download(ctx context.Context, bucket, key string) (*domain.DownloadResult, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, wrapErr("failed to get object", key, err)
	}

	return &domain.DownloadResult{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Length:      aws.ToInt64(out.ContentLength),
		Metadata:    out.Metadata,
	}, nil
}

// Delete deletes an object, S3 does not fail on a missing key
func (a *Adapter) Delete(ctx context.Context, bucket, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("%w: failed to delete object %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}

// Exists reports whether key is present
func (a *Adapter) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: failed to head object %s: %w", domain.ErrStorage, key, err)
}

// Copy copies an object server side, replacing metadata when given
func (a *Adapter) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, metadata map[string]string) error {
	input := &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(url.PathEscape(srcBucket + "/" + srcKey)),
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
		input.MetadataDirective = types.MetadataDirectiveReplace
	}

	if _, err := a.client.CopyObject(ctx, input); err != nil {
		return wrapErr("failed to copy object", srcKey, err)
	}
	return nil
}

// SignedUploadURL generates a presigned PUT bound to contentType
func (a *Adapter) SignedUploadURL(ctx context.Context, bucket, key string, ttl time.Duration, contentType string) (string, error) {
	input := &s3.PutObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := a.presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%w: failed to presign upload: %w", domain.ErrStorage, err)
	}
	return req.URL, nil
}

// SignedDownloadURL generates a presigned GET with optional response header overrides
func (a *Adapter) SignedDownloadURL(ctx context.Context, bucket, key string, ttl time.Duration, overrides domain.ResponseOverrides) (string, error) {
	input := &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)}
	if overrides.ContentType != "" {
		input.ResponseContentType = aws.String(overrides.ContentType)
	}
	if overrides.ContentDisposition != "" {
		input.ResponseContentDisposition = aws.String(overrides.ContentDisposition)
	}

	req, err := a.presignClient.PresignGetObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%w: failed to presign download: %w", domain.ErrStorage, err)
	}
	return req.URL, nil
}

// List lists one page of objects under prefix
func (a *Adapter) List(ctx context.Context, bucket, prefix string, maxKeys int, continuation string) (*domain.ObjectListing, error) {
	if maxKeys <= 0 || maxKeys > 1000 {
		maxKeys = 1000
	}
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(int32(maxKeys)),
	}
	if continuation != "" {
		input.ContinuationToken = aws.String(continuation)
	}

	out, err := a.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list objects: %w", domain.ErrStorage, err)
	}

	listing := &domain.ObjectListing{
		Objects:     make([]domain.ObjectInfo, 0, len(out.Contents)),
		IsTruncated: aws.ToBool(out.IsTruncated),
	}
	for _, object := range out.Contents {
		listing.Objects = append(listing.Objects, domain.ObjectInfo{
			Key:          aws.ToString(object.Key),
			Size:         aws.ToInt64(object.Size),
			ETag:         strings.Trim(aws.ToString(object.ETag), `"`),
			LastModified: aws.ToTime(object.LastModified),
		})
	}
	if listing.IsTruncated {
		listing.NextContinuation = aws.ToString(out.NextContinuationToken)
	}
	return listing, nil
}

func encodeTags(tags map[string]string) string {
	values := make(url.Values, len(tags))
	for k, v := range tags {
		values.Set(k, v)
	}
	return values.Encode()
}

func wrapErr(msg, key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", domain.ErrObjectNotFound, key)
	}
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorage, msg, key, err)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	// CopyObject reports a missing source as a generic API error
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound")
}
