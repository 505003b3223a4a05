package port

import (
	"context"
	"file-service/internal/core/domain"
	"time"
)

// RetentionService is service that purges soft-deleted files past the retention window
type RetentionService interface {
	PurgeDeleted(ctx context.Context, now time.Time) (domain.RetentionReport, error)
}
