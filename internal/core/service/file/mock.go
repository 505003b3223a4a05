package file

import (
	"context"
	"file-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockFileService is a mock implementation of FileService
type MockFileService struct {
	mock.Mock
}

// NewMockFileService creates a new MockFileService
func NewMockFileService() *MockFileService {
	return &MockFileService{}
}

func (m *MockFileService) UploadFile(ctx context.Context, in domain.UploadInput) (*domain.FileRecord, error) {
	args := m.Called(ctx, in)
	record, _ := args.Get(0).(*domain.FileRecord)
	return record, args.Error(1)
}

func (m *MockFileService) UploadFiles(ctx context.Context, in []domain.UploadInput) domain.UploadReport {
	args := m.Called(ctx, in)
	report, _ := args.Get(0).(domain.UploadReport)
	return report
}

func (m *MockFileService) GetFile(ctx context.Context, id uuid.UUID, requester domain.Identity) (*domain.FileRecord, error) {
	args := m.Called(ctx, id, requester)
	record, _ := args.Get(0).(*domain.FileRecord)
	return record, args.Error(1)
}

func (m *MockFileService) DownloadFile(ctx context.Context, id uuid.UUID, requester domain.Identity) (*domain.FileRecord, *domain.DownloadResult, error) {
	args := m.Called(ctx, id, requester)
	record, _ := args.Get(0).(*domain.FileRecord)
	result, _ := args.Get(1).(*domain.DownloadResult)
	return record, result, args.Error(2)
}

func (m *MockFileService) SearchFiles(ctx context.Context, opts domain.SearchOptions) (*domain.SearchResult, error) {
	args := m.Called(ctx, opts)
	result, _ := args.Get(0).(*domain.SearchResult)
	return result, args.Error(1)
}

func (m *MockFileService) ShareFile(ctx context.Context, req domain.ShareRequest, requester domain.Identity) (*domain.ShareGrant, error) {
	args := m.Called(ctx, req, requester)
	grant, _ := args.Get(0).(*domain.ShareGrant)
	return grant, args.Error(1)
}

func (m *MockFileService) RevokeShare(ctx context.Context, fileID, shareID uuid.UUID, requester domain.Identity) error {
	args := m.Called(ctx, fileID, shareID, requester)
	return args.Error(0)
}

func (m *MockFileService) AccessSharedLink(ctx context.Context, token, password string, accessedBy *string) (*domain.SharedFile, error) {
	args := m.Called(ctx, token, password, accessedBy)
	shared, _ := args.Get(0).(*domain.SharedFile)
	return shared, args.Error(1)
}

func (m *MockFileService) DeleteFile(ctx context.Context, id uuid.UUID, requester domain.Identity) error {
	args := m.Called(ctx, id, requester)
	return args.Error(0)
}

func (m *MockFileService) CreateVersion(ctx context.Context, in domain.VersionInput) (*domain.FileVersion, error) {
	args := m.Called(ctx, in)
	version, _ := args.Get(0).(*domain.FileVersion)
	return version, args.Error(1)
}

func (m *MockFileService) ListVersions(ctx context.Context, fileID uuid.UUID, requester domain.Identity) ([]domain.FileVersion, error) {
	args := m.Called(ctx, fileID, requester)
	versions, _ := args.Get(0).([]domain.FileVersion)
	return versions, args.Error(1)
}

func (m *MockFileService) RestoreVersion(ctx context.Context, fileID uuid.UUID, versionNumber int, requester domain.Identity) (*domain.FileVersion, error) {
	args := m.Called(ctx, fileID, versionNumber, requester)
	version, _ := args.Get(0).(*domain.FileVersion)
	return version, args.Error(1)
}

func (m *MockFileService) AddTags(ctx context.Context, fileID uuid.UUID, tags []string, requester domain.Identity) ([]domain.FileTag, error) {
	args := m.Called(ctx, fileID, tags, requester)
	fileTags, _ := args.Get(0).([]domain.FileTag)
	return fileTags, args.Error(1)
}

func (m *MockFileService) RemoveTag(ctx context.Context, fileID uuid.UUID, tag string, requester domain.Identity) error {
	args := m.Called(ctx, fileID, tag, requester)
	return args.Error(0)
}

func (m *MockFileService) GetSignedURL(ctx context.Context, id uuid.UUID, requester domain.Identity, action domain.SignedURLAction, ttl time.Duration) (string, error) {
	args := m.Called(ctx, id, requester, action, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) TransformImage(ctx context.Context, fileID uuid.UUID, req domain.TransformRequest, requester domain.Identity) (*domain.FileVersion, error) {
	args := m.Called(ctx, fileID, req, requester)
	version, _ := args.Get(0).(*domain.FileVersion)
	return version, args.Error(1)
}
