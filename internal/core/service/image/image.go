// Package image is the image transform engine: metadata, variants and on-demand edits.
package image

import (
	"bytes"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	// decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultQuality is used when no quality is requested
	DefaultQuality = 85
	// ThumbnailQuality is the JPEG quality of on-demand thumbnails
	ThumbnailQuality = 80
	// maxPixels rejects decompression bombs before decoding
	maxPixels = 0x3FFF * 0x3FFF
	// maxDimension bounds requested output sizes
	maxDimension = 10000
)

// Processor implements port.ImageProcessor with imaging
type Processor struct {
	storage port.ObjectStore
	bucket  string
	logger  *slog.Logger
}

// NewProcessor returns Processor uploading variants to bucket
func NewProcessor(storage port.ObjectStore, bucket string, logger *slog.Logger) *Processor {
	return &Processor{storage: storage, bucket: bucket, logger: logger}
}

// Metadata reads dimensions, format, alpha and EXIF orientation without decoding pixels
func (p *Processor) Metadata(buf []byte) (*domain.ImageMetadata, error) {
	cfg, format, err := decodeConfig(buf)
	if err != nil {
		return nil, err
	}

	return &domain.ImageMetadata{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      domain.ImageFormat(format),
		Size:        int64(len(buf)),
		HasAlpha:    hasAlpha(cfg.ColorModel),
		Orientation: orientation(buf),
	}, nil
}

func decodeConfig(buf []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: unsupported image: %w", domain.ErrTransform, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, "", fmt.Errorf("%w: empty image", domain.ErrTransform)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return image.Config{}, "", fmt.Errorf("%w: image of %dx%d exceeds pixel limit", domain.ErrTransform, cfg.Width, cfg.Height)
	}
	return cfg, format, nil
}

// decode returns the image with EXIF orientation applied and its source format
func decode(buf []byte) (image.Image, domain.ImageFormat, error) {
	_, format, err := decodeConfig(buf)
	if err != nil {
		return nil, "", err
	}

	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode %s: %w", domain.ErrTransform, format, err)
	}
	return img, domain.ImageFormat(format), nil
}

// orientation returns the EXIF orientation tag, 1 when absent
func orientation(buf []byte) int {
	x, err := exif.Decode(bytes.NewReader(buf))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

func hasAlpha(model color.Model) bool {
	// truecolor PNGs without alpha report RGBAModel, only non-premultiplied models carry real alpha
	switch model {
	case color.NRGBAModel, color.NRGBA64Model, color.NYCbCrAModel, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if palette, ok := model.(color.Palette); ok {
		for _, c := range palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}
