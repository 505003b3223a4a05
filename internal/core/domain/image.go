package domain

import "strings"

// ImageFormat is an encoded image format
type ImageFormat string

const (
	ImageFormatJPEG ImageFormat = "jpeg"
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatWebP ImageFormat = "webp"
	ImageFormatGIF  ImageFormat = "gif"
	ImageFormatBMP  ImageFormat = "bmp"
	ImageFormatTIFF ImageFormat = "tiff"
)

// ParseImageFormat accepts jpeg, jpg, png and webp as output formats
func ParseImageFormat(raw string) (ImageFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "jpeg", "jpg":
		return ImageFormatJPEG, true
	case "png":
		return ImageFormatPNG, true
	case "webp":
		return ImageFormatWebP, true
	}
	return "", false
}

// Extension returns the file extension used for keys
func (f ImageFormat) Extension() string {
	if f == ImageFormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MimeType returns the content type of the format
func (f ImageFormat) MimeType() string {
	return "image/" + string(f)
}

// ImageSize is a named bounding box used for variants
type ImageSize struct {
	Name    string
	Width   int
	Height  int
	Quality int
}

// DefaultImageSizes are the variants generated for every image upload
var DefaultImageSizes = []ImageSize{
	{Name: "thumbnail", Width: 150, Height: 150, Quality: 80},
	{Name: "small", Width: 400, Height: 400, Quality: 85},
	{Name: "medium", Width: 800, Height: 800, Quality: 85},
	{Name: "large", Width: 1920, Height: 1920, Quality: 90},
}

// ImageMetadata describes a decoded image
type ImageMetadata struct {
	Width       int
	Height      int
	Format      ImageFormat
	Size        int64
	HasAlpha    bool
	Orientation int
}

// ImageVariant is a stored encoding of an image
type ImageVariant struct {
	Key    string
	Width  int
	Height int
	Size   int64
	Format ImageFormat
}

// ProcessedImage is the result of the image pipeline
type ProcessedImage struct {
	Original ImageVariant
	Variants map[string]ImageVariant
}

// ResizeFit is the strategy used when both dimensions are given
type ResizeFit string

const (
	ResizeFitInside ResizeFit = "inside"
	ResizeFitCover  ResizeFit = "cover"
	ResizeFitFill   ResizeFit = "fill"
)

// ResizeOptions configures a resize
type ResizeOptions struct {
	Width              int
	Height             int
	Fit                ResizeFit
	WithoutEnlargement bool
	Format             ImageFormat
	Quality            int
}

// CropRect is a pixel rectangle, inputs are rounded to integers
type CropRect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// TransformOperation is an on-demand image edit
type TransformOperation string

const (
	TransformResize    TransformOperation = "resize"
	TransformCrop      TransformOperation = "crop"
	TransformRotate    TransformOperation = "rotate"
	TransformConvert   TransformOperation = "convert"
	TransformThumbnail TransformOperation = "thumbnail"
)

// TransformRequest is an on-demand edit stored as a new version
type TransformRequest struct {
	Operation TransformOperation
	Resize    ResizeOptions
	Crop      CropRect
	Angle     int
	Format    ImageFormat
	Quality   int
}
