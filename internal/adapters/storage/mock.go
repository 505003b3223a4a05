package storage

import (
	"context"
	"file-service/internal/core/domain"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string, metadata, tags map[string]string) (*domain.UploadResult, error) {
	args := m.Called(ctx, bucket, key, body, size, contentType, metadata, tags)
	result, _ := args.Get(0).(*domain.UploadResult)
	return result, args.Error(1)
}

func (m *MockStorage) Download(ctx context.Context, bucket, key string) (*domain.DownloadResult, error) {
	args := m.Called(ctx, bucket, key)
	result, _ := args.Get(0).(*domain.DownloadResult)
	return result, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, metadata map[string]string) error {
	args := m.Called(ctx, srcBucket, srcKey, dstBucket, dstKey, metadata)
	return args.Error(0)
}

func (m *MockStorage) SignedUploadURL(ctx context.Context, bucket, key string, ttl time.Duration, contentType string) (string, error) {
	args := m.Called(ctx, bucket, key, ttl, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) SignedDownloadURL(ctx context.Context, bucket, key string, ttl time.Duration, overrides domain.ResponseOverrides) (string, error) {
	args := m.Called(ctx, bucket, key, ttl, overrides)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, bucket, prefix string, maxKeys int, continuation string) (*domain.ObjectListing, error) {
	args := m.Called(ctx, bucket, prefix, maxKeys, continuation)
	listing, _ := args.Get(0).(*domain.ObjectListing)
	return listing, args.Error(1)
}
