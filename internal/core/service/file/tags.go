package file

import (
	"context"
	"file-service/internal/core/domain"
	"fmt"

	"github.com/google/uuid"
)

// AddTags attaches normalized tags and returns every tag of the file
func (f *fileService) AddTags(ctx context.Context, fileID uuid.UUID, tags []string, requester domain.Identity) ([]domain.FileTag, error) {
	normalized := domain.NormalizeTags(tags)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("%w: at least one non-empty tag is required", domain.ErrValidation)
	}

	record, err := f.loadActive(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := f.requirePermission(ctx, record, requester, domain.PermissionEdit); err != nil {
		return nil, err
	}

	if _, err := f.uow.TagRepo().AddMany(ctx, record.ID, normalized, requester.UserID); err != nil {
		return nil, err
	}

	return f.uow.TagRepo().FindByFileID(ctx, record.ID)
}

// RemoveTag detaches one tag from the file
func (f *fileService) RemoveTag(ctx context.Context, fileID uuid.UUID, tag string, requester domain.Identity) error {
	normalized := domain.NormalizeTag(tag)
	if normalized == "" {
		return fmt.Errorf("%w: tag is required", domain.ErrValidation)
	}

	record, err := f.loadActive(ctx, fileID)
	if err != nil {
		return err
	}

	if err := f.requirePermission(ctx, record, requester, domain.PermissionEdit); err != nil {
		return err
	}

	return f.uow.TagRepo().Remove(ctx, record.ID, normalized)
}
