package port

import (
	"context"
	"file-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// VersionRepository is an interface to define file version persistence
type VersionRepository interface {
	// LockFile takes a row lock on a ready, undeleted file for the rest of the transaction
	LockFile(ctx context.Context, fileID uuid.UUID) error
	// ReserveNumber returns a version number no other writer of the file will get
	ReserveNumber(ctx context.Context, fileID uuid.UUID) (int, error)
	ClearCurrent(ctx context.Context, fileID uuid.UUID) error
	// Create fails with domain.ErrVersionConflict when the number is taken
	Create(ctx context.Context, version *domain.FileVersion) error
	ListByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.FileVersion, error)
	FindByNumber(ctx context.Context, fileID uuid.UUID, versionNumber int) (*domain.FileVersion, error)
	FindCurrent(ctx context.Context, fileID uuid.UUID) (*domain.FileVersion, error)
	MarkRestored(ctx context.Context, id uuid.UUID, restoredBy string, at time.Time) error
}
