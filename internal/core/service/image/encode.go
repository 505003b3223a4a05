package image

import (
	"bytes"
	"file-service/internal/core/domain"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
)

// outputFormat maps a source format to the format variants are written in
func outputFormat(source domain.ImageFormat) domain.ImageFormat {
	switch source {
	case domain.ImageFormatJPEG, domain.ImageFormatPNG, domain.ImageFormatWebP:
		return source
	}
	return domain.ImageFormatJPEG
}

func normalizeQuality(quality int) int {
	switch {
	case quality <= 0:
		return DefaultQuality
	case quality > 100:
		return 100
	}
	return quality
}

// encode writes img as jpeg, png or webp. Unknown formats fall back to jpeg.
func encode(img image.Image, format domain.ImageFormat, quality int) ([]byte, domain.ImageFormat, error) {
	format = outputFormat(format)
	quality = normalizeQuality(quality)

	var buf bytes.Buffer
	var err error
	switch format {
	case domain.ImageFormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case domain.ImageFormatWebP:
		err = webp.Encode(&buf, img, webp.Options{Quality: quality})
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to encode %s: %w", domain.ErrTransform, format, err)
	}
	return buf.Bytes(), format, nil
}
