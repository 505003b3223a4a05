package tag

import (
	"context"
	"file-service/internal/core/domain"
)

// ListTags pages through the requester's tags in name order, marker is the last name of the previous page
func (t *tagService) ListTags(ctx context.Context, requester domain.Identity, limit int, marker *string) ([]domain.TagSummary, *string, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	list, nextMarker, err := t.repo.ListDistinct(ctx, requester.UserID, limit, marker)
	if err != nil {
		return nil, nil, err
	}

	return list, nextMarker, nil
}
