package scanner

import (
	"context"
	"file-service/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockScanner is a mock implementation of MalwareScanner
type MockScanner struct {
	mock.Mock
}

// NewMockScanner creates a new MockScanner
func NewMockScanner() *MockScanner {
	return &MockScanner{}
}

func (m *MockScanner) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockScanner) ScanBuffer(ctx context.Context, buf []byte) domain.ScanResult {
	args := m.Called(ctx, buf)
	result, _ := args.Get(0).(domain.ScanResult)
	return result
}
