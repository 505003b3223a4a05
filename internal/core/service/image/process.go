package image

import (
	"bytes"
	"context"
	"file-service/internal/core/domain"
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Process stores the orientation-normalized original at originalKey and one
// fit-inside variant per size. Sources smaller than a size are never upscaled.
// Objects written before a failure are removed before returning.
func (p *Processor) Process(ctx context.Context, buf []byte, originalKey string, sizes []domain.ImageSize) (*domain.ProcessedImage, error) {
	img, format, err := decode(buf)
	if err != nil {
		return nil, err
	}
	outFormat := outputFormat(format)

	var uploaded []string
	fail := func(err error) (*domain.ProcessedImage, error) {
		p.cleanup(uploaded)
		return nil, err
	}

	original := buf
	originalFormat := format
	if orientation(buf) != 1 {
		original, originalFormat, err = encode(img, format, DefaultQuality)
		if err != nil {
			return nil, err
		}
	}

	bounds := img.Bounds()
	if err := p.upload(ctx, originalKey, original, originalFormat); err != nil {
		return nil, err
	}
	uploaded = append(uploaded, originalKey)

	result := &domain.ProcessedImage{
		Original: domain.ImageVariant{
			Key:    originalKey,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
			Size:   int64(len(original)),
			Format: originalFormat,
		},
		Variants: make(map[string]domain.ImageVariant, len(sizes)),
	}

	for _, size := range sizes {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		// Fit never enlarges
		resized := imaging.Fit(img, size.Width, size.Height, imaging.Lanczos)
		data, _, err := encode(resized, outFormat, size.Quality)
		if err != nil {
			return fail(err)
		}

		key := domain.VariantKey(originalKey, size.Name, outFormat.Extension())
		if err := p.upload(ctx, key, data, outFormat); err != nil {
			return fail(err)
		}
		uploaded = append(uploaded, key)

		rb := resized.Bounds()
		result.Variants[size.Name] = domain.ImageVariant{
			Key:    key,
			Width:  rb.Dx(),
			Height: rb.Dy(),
			Size:   int64(len(data)),
			Format: outFormat,
		}
	}

	p.logger.Debug("image processed",
		slog.String("key", originalKey),
		slog.Int("variants", len(result.Variants)))

	return result, nil
}

func (p *Processor) upload(ctx context.Context, key string, data []byte, format domain.ImageFormat) error {
	_, err := p.storage.Upload(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)), format.MimeType(), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// cleanup is best effort, the caller reports the original failure
func (p *Processor) cleanup(keys []string) {
	for _, key := range keys {
		if err := p.storage.Delete(context.Background(), p.bucket, key); err != nil {
			p.logger.Warn("failed to remove partial image output", slog.String("key", key), slog.Any("error", err))
		}
	}
}
