package tag

import (
	"context"
	"file-service/internal/core/domain"
	"fmt"
)

// GetTagByName returns how many of the requester's files carry name
func (t *tagService) GetTagByName(ctx context.Context, requester domain.Identity, name string) (*domain.TagSummary, error) {
	normalized := domain.NormalizeTag(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: tag name is required", domain.ErrValidation)
	}
	return t.repo.FindByName(ctx, requester.UserID, normalized)
}
