package image

import (
	"context"
	"file-service/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockImageProcessor is a mock implementation of ImageProcessor
type MockImageProcessor struct {
	mock.Mock
}

// NewMockImageProcessor creates a new MockImageProcessor
func NewMockImageProcessor() *MockImageProcessor {
	return &MockImageProcessor{}
}

func (m *MockImageProcessor) Metadata(buf []byte) (*domain.ImageMetadata, error) {
	args := m.Called(buf)
	meta, _ := args.Get(0).(*domain.ImageMetadata)
	return meta, args.Error(1)
}

func (m *MockImageProcessor) Process(ctx context.Context, buf []byte, originalKey string, sizes []domain.ImageSize) (*domain.ProcessedImage, error) {
	args := m.Called(ctx, buf, originalKey, sizes)
	processed, _ := args.Get(0).(*domain.ProcessedImage)
	return processed, args.Error(1)
}

func (m *MockImageProcessor) Resize(buf []byte, opts domain.ResizeOptions) ([]byte, error) {
	args := m.Called(buf, opts)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockImageProcessor) Crop(buf []byte, rect domain.CropRect) ([]byte, error) {
	args := m.Called(buf, rect)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockImageProcessor) Rotate(buf []byte, angle int) ([]byte, error) {
	args := m.Called(buf, angle)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockImageProcessor) Convert(buf []byte, format domain.ImageFormat, quality int) ([]byte, error) {
	args := m.Called(buf, format, quality)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockImageProcessor) Thumbnail(buf []byte, width, height int) ([]byte, error) {
	args := m.Called(buf, width, height)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}
