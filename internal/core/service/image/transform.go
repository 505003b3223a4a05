package image

import (
	"file-service/internal/core/domain"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Resize scales the image according to opts.Fit.
// With a single dimension the aspect ratio is kept.
func (p *Processor) Resize(buf []byte, opts domain.ResizeOptions) ([]byte, error) {
	if opts.Width < 0 || opts.Height < 0 || (opts.Width == 0 && opts.Height == 0) {
		return nil, validationErr("resize needs a positive width or height")
	}
	if opts.Width > maxDimension || opts.Height > maxDimension {
		return nil, validationErr("resize dimensions are limited to %d", maxDimension)
	}

	img, format, err := decode(buf)
	if err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = format
	}

	b := img.Bounds()
	if opts.WithoutEnlargement && (opts.Width == 0 || opts.Width >= b.Dx()) && (opts.Height == 0 || opts.Height >= b.Dy()) {
		return encodeBytes(img, opts.Format, opts.Quality)
	}

	var out image.Image
	switch {
	case opts.Width == 0 || opts.Height == 0:
		out = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	case opts.Fit == domain.ResizeFitCover:
		out = imaging.Fill(img, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)
	case opts.Fit == domain.ResizeFitFill:
		out = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	default:
		w, h := insideBox(b.Dx(), b.Dy(), opts.Width, opts.Height)
		out = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	return encodeBytes(out, opts.Format, opts.Quality)
}

// insideBox returns the largest size with the source ratio fitting w x h
func insideBox(srcW, srcH, w, h int) (int, int) {
	ratio := math.Min(float64(w)/float64(srcW), float64(h)/float64(srcH))
	return max(1, int(math.Round(float64(srcW)*ratio))), max(1, int(math.Round(float64(srcH)*ratio)))
}

// Crop extracts rect, rounded to whole pixels. The rectangle must lie inside the image.
func (p *Processor) Crop(buf []byte, rect domain.CropRect) ([]byte, error) {
	left, top := int(math.Round(rect.Left)), int(math.Round(rect.Top))
	width, height := int(math.Round(rect.Width)), int(math.Round(rect.Height))
	if left < 0 || top < 0 || width <= 0 || height <= 0 {
		return nil, validationErr("crop rectangle must have a non negative origin and a positive size")
	}

	img, format, err := decode(buf)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if left+width > b.Dx() || top+height > b.Dy() {
		return nil, validationErr("crop rectangle %dx%d+%d+%d exceeds image %dx%d", width, height, left, top, b.Dx(), b.Dy())
	}

	out := imaging.Crop(img, image.Rect(b.Min.X+left, b.Min.Y+top, b.Min.X+left+width, b.Min.Y+top+height))
	return encodeBytes(out, format, DefaultQuality)
}

// Rotate turns the image by a multiple of 90 degrees, positive angles are clockwise
func (p *Processor) Rotate(buf []byte, angle int) ([]byte, error) {
	var rotate func(image.Image) *image.NRGBA
	// imaging rotates counter-clockwise
	switch angle {
	case 90, -270:
		rotate = imaging.Rotate270
	case -90, 270:
		rotate = imaging.Rotate90
	case 180, -180:
		rotate = imaging.Rotate180
	default:
		return nil, validationErr("rotation angle must be one of ±90, ±180, ±270, got %d", angle)
	}

	img, format, err := decode(buf)
	if err != nil {
		return nil, err
	}
	return encodeBytes(rotate(img), format, DefaultQuality)
}

// Convert re-encodes the image as format
func (p *Processor) Convert(buf []byte, format domain.ImageFormat, quality int) ([]byte, error) {
	if _, ok := domain.ParseImageFormat(string(format)); !ok {
		return nil, validationErr("unsupported output format %q", format)
	}

	img, _, err := decode(buf)
	if err != nil {
		return nil, err
	}
	return encodeBytes(img, format, quality)
}

// Thumbnail center-crops the image to exactly width x height as JPEG
func (p *Processor) Thumbnail(buf []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > maxDimension || height > maxDimension {
		return nil, validationErr("thumbnail size must be between 1 and %d", maxDimension)
	}

	img, _, err := decode(buf)
	if err != nil {
		return nil, err
	}
	out := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	return encodeBytes(out, domain.ImageFormatJPEG, ThumbnailQuality)
}

func encodeBytes(img image.Image, format domain.ImageFormat, quality int) ([]byte, error) {
	data, _, err := encode(img, format, quality)
	return data, err
}
