package port

import (
	"context"
	"file-service/internal/core/domain"
)

// ImageProcessor is an interface to define the image transform engine
type ImageProcessor interface {
	Metadata(buf []byte) (*domain.ImageMetadata, error)
	// Process normalizes orientation, stores the original at originalKey and one variant per size
	Process(ctx context.Context, buf []byte, originalKey string, sizes []domain.ImageSize) (*domain.ProcessedImage, error)
	Resize(buf []byte, opts domain.ResizeOptions) ([]byte, error)
	Crop(buf []byte, rect domain.CropRect) ([]byte, error)
	Rotate(buf []byte, angle int) ([]byte, error)
	Convert(buf []byte, format domain.ImageFormat, quality int) ([]byte, error)
	Thumbnail(buf []byte, width, height int) ([]byte, error)
}
