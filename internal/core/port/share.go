package port

import (
	"context"
	"file-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

// ShareRepository is an interface to define share grant persistence
type ShareRepository interface {
	// Upsert inserts a grant or replaces the one with the same (file, target, type)
	Upsert(ctx context.Context, grant *domain.ShareGrant) (*domain.ShareGrant, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ShareGrant, error)
	FindByToken(ctx context.Context, token string) (*domain.ShareGrant, error)
	ListByFileID(ctx context.Context, fileID uuid.UUID, activeOnly bool) ([]domain.ShareGrant, error)
	// RecordAccess counts one use, failing with domain.ErrShareUnavailable once exhausted
	RecordAccess(ctx context.Context, id uuid.UUID, accessedBy *string, at time.Time) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
