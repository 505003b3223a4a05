package port

import (
	"context"
	"file-service/internal/core/domain"

	"github.com/google/uuid"
)

// TagRepository represents file tag persistence
type TagRepository interface {
	AddMany(ctx context.Context, fileID uuid.UUID, tags []string, addedBy string) (int, error)
	FindByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.FileTag, error)
	Remove(ctx context.Context, fileID uuid.UUID, tag string) error
	ListDistinct(ctx context.Context, ownerID string, limit int, marker *string) ([]domain.TagSummary, *string, error)
	FindByName(ctx context.Context, ownerID, name string) (*domain.TagSummary, error)
}

// TagService represents the tag catalogue
type TagService interface {
	GetTagByName(ctx context.Context, requester domain.Identity, name string) (*domain.TagSummary, error)
	ListTags(ctx context.Context, requester domain.Identity, limit int, marker *string) ([]domain.TagSummary, *string, error)
}
