package cleanup

import (
	"context"
	"file-service/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockRetentionService is a mock implementation of RetentionService
type MockRetentionService struct {
	mock.Mock
}

func (m *MockRetentionService) PurgeDeleted(ctx context.Context, now time.Time) (domain.RetentionReport, error) {
	args := m.Called(ctx, now)
	report, _ := args.Get(0).(domain.RetentionReport)
	return report, args.Error(1)
}
