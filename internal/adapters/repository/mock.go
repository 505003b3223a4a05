package repository

import (
	"context"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

func NewMockFileRepository() *MockFileRepository {
	return &MockFileRepository{}
}

func (m *MockFileRepository) Create(ctx context.Context, record *domain.FileRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FileRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*domain.FileRecord)
	return record, args.Error(1)
}

func (m *MockFileRepository) Update(ctx context.Context, record *domain.FileRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockFileRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.FileStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockFileRepository) MarkDeleted(ctx context.Context, id uuid.UUID, deletedBy string, at time.Time) error {
	args := m.Called(ctx, id, deletedBy, at)
	return args.Error(0)
}

func (m *MockFileRepository) IncrementAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockFileRepository) Search(ctx context.Context, opts domain.SearchOptions) ([]domain.FileRecord, int, error) {
	args := m.Called(ctx, opts)
	files, _ := args.Get(0).([]domain.FileRecord)
	return files, args.Int(1), args.Error(2)
}

func (m *MockFileRepository) FindDeletedBefore(ctx context.Context, before time.Time, limit int) ([]domain.FileRecord, error) {
	args := m.Called(ctx, before, limit)
	files, _ := args.Get(0).([]domain.FileRecord)
	return files, args.Error(1)
}

func (m *MockFileRepository) Purge(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockShareRepository struct {
	mock.Mock
}

func NewMockShareRepository() *MockShareRepository {
	return &MockShareRepository{}
}

func (m *MockShareRepository) Upsert(ctx context.Context, grant *domain.ShareGrant) (*domain.ShareGrant, error) {
	args := m.Called(ctx, grant)
	saved, _ := args.Get(0).(*domain.ShareGrant)
	return saved, args.Error(1)
}

func (m *MockShareRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ShareGrant, error) {
	args := m.Called(ctx, id)
	grant, _ := args.Get(0).(*domain.ShareGrant)
	return grant, args.Error(1)
}

func (m *MockShareRepository) FindByToken(ctx context.Context, token string) (*domain.ShareGrant, error) {
	args := m.Called(ctx, token)
	grant, _ := args.Get(0).(*domain.ShareGrant)
	return grant, args.Error(1)
}

func (m *MockShareRepository) ListByFileID(ctx context.Context, fileID uuid.UUID, activeOnly bool) ([]domain.ShareGrant, error) {
	args := m.Called(ctx, fileID, activeOnly)
	grants, _ := args.Get(0).([]domain.ShareGrant)
	return grants, args.Error(1)
}

func (m *MockShareRepository) RecordAccess(ctx context.Context, id uuid.UUID, accessedBy *string, at time.Time) error {
	args := m.Called(ctx, id, accessedBy, at)
	return args.Error(0)
}

func (m *MockShareRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockVersionRepository struct {
	mock.Mock
}

func NewMockVersionRepository() *MockVersionRepository {
	return &MockVersionRepository{}
}

func (m *MockVersionRepository) LockFile(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

func (m *MockVersionRepository) ReserveNumber(ctx context.Context, fileID uuid.UUID) (int, error) {
	args := m.Called(ctx, fileID)
	return args.Int(0), args.Error(1)
}

func (m *MockVersionRepository) ClearCurrent(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

func (m *MockVersionRepository) Create(ctx context.Context, version *domain.FileVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockVersionRepository) ListByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.FileVersion, error) {
	args := m.Called(ctx, fileID)
	versions, _ := args.Get(0).([]domain.FileVersion)
	return versions, args.Error(1)
}

func (m *MockVersionRepository) FindByNumber(ctx context.Context, fileID uuid.UUID, versionNumber int) (*domain.FileVersion, error) {
	args := m.Called(ctx, fileID, versionNumber)
	version, _ := args.Get(0).(*domain.FileVersion)
	return version, args.Error(1)
}

func (m *MockVersionRepository) FindCurrent(ctx context.Context, fileID uuid.UUID) (*domain.FileVersion, error) {
	args := m.Called(ctx, fileID)
	version, _ := args.Get(0).(*domain.FileVersion)
	return version, args.Error(1)
}

func (m *MockVersionRepository) MarkRestored(ctx context.Context, id uuid.UUID, restoredBy string, at time.Time) error {
	args := m.Called(ctx, id, restoredBy, at)
	return args.Error(0)
}

type MockTagRepository struct {
	mock.Mock
}

func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{}
}

func (m *MockTagRepository) AddMany(ctx context.Context, fileID uuid.UUID, tags []string, addedBy string) (int, error) {
	args := m.Called(ctx, fileID, tags, addedBy)
	return args.Int(0), args.Error(1)
}

func (m *MockTagRepository) FindByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.FileTag, error) {
	args := m.Called(ctx, fileID)
	tags, _ := args.Get(0).([]domain.FileTag)
	return tags, args.Error(1)
}

func (m *MockTagRepository) Remove(ctx context.Context, fileID uuid.UUID, tag string) error {
	args := m.Called(ctx, fileID, tag)
	return args.Error(0)
}

func (m *MockTagRepository) ListDistinct(ctx context.Context, ownerID string, limit int, marker *string) ([]domain.TagSummary, *string, error) {
	args := m.Called(ctx, ownerID, limit, marker)
	tags, _ := args.Get(0).([]domain.TagSummary)
	next, _ := args.Get(1).(*string)
	return tags, next, args.Error(2)
}

func (m *MockTagRepository) FindByName(ctx context.Context, ownerID, name string) (*domain.TagSummary, error) {
	args := m.Called(ctx, ownerID, name)
	tag, _ := args.Get(0).(*domain.TagSummary)
	return tag, args.Error(1)
}

type MockUnitOfWork struct {
	mock.Mock
	fileRepo    *MockFileRepository
	shareRepo   *MockShareRepository
	versionRepo *MockVersionRepository
	tagRepo     *MockTagRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		fileRepo:    &MockFileRepository{},
		shareRepo:   &MockShareRepository{},
		versionRepo: &MockVersionRepository{},
		tagRepo:     &MockTagRepository{},
	}
}

func (m *MockUnitOfWork) FileRepo() port.FileRepository {
	return m.fileRepo
}

func (m *MockUnitOfWork) ShareRepo() port.ShareRepository {
	return m.shareRepo
}

func (m *MockUnitOfWork) VersionRepo() port.VersionRepository {
	return m.versionRepo
}

func (m *MockUnitOfWork) TagRepo() port.TagRepository {
	return m.tagRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetFileRepoMock() *MockFileRepository {
	return m.fileRepo
}

func (m *MockUnitOfWork) GetShareRepoMock() *MockShareRepository {
	return m.shareRepo
}

func (m *MockUnitOfWork) GetVersionRepoMock() *MockVersionRepository {
	return m.versionRepo
}

func (m *MockUnitOfWork) GetTagRepoMock() *MockTagRepository {
	return m.tagRepo
}
