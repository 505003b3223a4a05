package port

import (
	"context"
	"file-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// FileRepository is an interface to define file record persistence
type FileRepository interface {
	Create(ctx context.Context, record *domain.FileRecord) error
	// FindByID also returns soft-deleted records
	FindByID(ctx context.Context, id uuid.UUID) (*domain.FileRecord, error)
	Update(ctx context.Context, record *domain.FileRecord) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.FileStatus) error
	MarkDeleted(ctx context.Context, id uuid.UUID, deletedBy string, at time.Time) error
	IncrementAccess(ctx context.Context, id uuid.UUID, at time.Time) error
	Search(ctx context.Context, opts domain.SearchOptions) ([]domain.FileRecord, int, error)
	FindDeletedBefore(ctx context.Context, before time.Time, limit int) ([]domain.FileRecord, error)
	Purge(ctx context.Context, id uuid.UUID) error
}

// FileService is an interface to define the upload orchestrator
type FileService interface {
	UploadFile(ctx context.Context, in domain.UploadInput) (*domain.FileRecord, error)
	UploadFiles(ctx context.Context, in []domain.UploadInput) domain.UploadReport
	GetFile(ctx context.Context, id uuid.UUID, requester domain.Identity) (*domain.FileRecord, error)
	DownloadFile(ctx context.Context, id uuid.UUID, requester domain.Identity) (*domain.FileRecord, *domain.DownloadResult, error)
	SearchFiles(ctx context.Context, opts domain.SearchOptions) (*domain.SearchResult, error)
	ShareFile(ctx context.Context, req domain.ShareRequest, requester domain.Identity) (*domain.ShareGrant, error)
	RevokeShare(ctx context.Context, fileID, shareID uuid.UUID, requester domain.Identity) error
	AccessSharedLink(ctx context.Context, token, password string, accessedBy *string) (*domain.SharedFile, error)
	DeleteFile(ctx context.Context, id uuid.UUID, requester domain.Identity) error
	CreateVersion(ctx context.Context, in domain.VersionInput) (*domain.FileVersion, error)
	ListVersions(ctx context.Context, fileID uuid.UUID, requester domain.Identity) ([]domain.FileVersion, error)
	RestoreVersion(ctx context.Context, fileID uuid.UUID, versionNumber int, requester domain.Identity) (*domain.FileVersion, error)
	AddTags(ctx context.Context, fileID uuid.UUID, tags []string, requester domain.Identity) ([]domain.FileTag, error)
	RemoveTag(ctx context.Context, fileID uuid.UUID, tag string, requester domain.Identity) error
	GetSignedURL(ctx context.Context, id uuid.UUID, requester domain.Identity, action domain.SignedURLAction, ttl time.Duration) (string, error)
	TransformImage(ctx context.Context, fileID uuid.UUID, req domain.TransformRequest, requester domain.Identity) (*domain.FileVersion, error)
}
