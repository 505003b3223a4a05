package tag

import (
	"context"
	"file-service/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockTagService is a mock implementation of TagService
type MockTagService struct {
	mock.Mock
}

func (m *MockTagService) ListTags(ctx context.Context, requester domain.Identity, limit int, marker *string) ([]domain.TagSummary, *string, error) {
	args := m.Called(ctx, requester, limit, marker)
	list, _ := args.Get(0).([]domain.TagSummary)
	next, _ := args.Get(1).(*string)
	return list, next, args.Error(2)
}

func (m *MockTagService) GetTagByName(ctx context.Context, requester domain.Identity, name string) (*domain.TagSummary, error) {
	args := m.Called(ctx, requester, name)
	summary, _ := args.Get(0).(*domain.TagSummary)
	return summary, args.Error(1)
}
