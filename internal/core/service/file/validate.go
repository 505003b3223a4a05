package file

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"file-service/internal/core/domain"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// AllowedImageMimeTypes are the accepted image types with their extensions
var AllowedImageMimeTypes = map[string][]string{
	"image/jpeg":    {".jpg", ".jpeg"},
	"image/png":     {".png"},
	"image/gif":     {".gif"},
	"image/webp":    {".webp"},
	"image/svg+xml": {".svg"},
	"image/bmp":     {".bmp"},
	"image/tiff":    {".tif", ".tiff"},
}

// AllowedVideoMimeTypes are the accepted video types with their extensions
var AllowedVideoMimeTypes = map[string][]string{
	"video/mp4":        {".mp4", ".m4v"},
	"video/mpeg":       {".mpeg", ".mpg"},
	"video/quicktime":  {".mov", ".qt"},
	"video/x-msvideo":  {".avi"},
	"video/webm":       {".webm"},
	"video/x-matroska": {".mkv"},
}

// AllowedDocumentMimeTypes are the accepted document types with their extensions
var AllowedDocumentMimeTypes = map[string][]string{
	"application/pdf":               {".pdf"},
	"application/msword":            {".doc"},
	"application/vnd.ms-excel":      {".xls"},
	"application/vnd.ms-powerpoint": {".ppt"},

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {".docx"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {".xlsx"},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {".pptx"},

	"text/plain": {".txt"},
	"text/csv":   {".csv"},
}

// processableImages are decoded by the image engine, other images are stored as is
var processableImages = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

func allowedExtensions(mimeType string) ([]string, bool) {
	for _, group := range []map[string][]string{AllowedImageMimeTypes, AllowedVideoMimeTypes, AllowedDocumentMimeTypes} {
		if exts, ok := group[mimeType]; ok {
			return exts, true
		}
	}
	return nil, false
}

// validateUpload checks size, drops server-owned metadata keys, sniffs the content
// and returns the MIME type to store
func (f *fileService) validateUpload(in *domain.UploadInput) (string, error) {
	size := int64(len(in.Data))
	if size == 0 {
		return "", fmt.Errorf("%w: file is empty", domain.ErrValidation)
	}
	if f.cfg.Upload.MaxFileSize > 0 && size > f.cfg.Upload.MaxFileSize {
		return "", fmt.Errorf("%w: file size %d exceeds the limit of %d bytes", domain.ErrValidation, size, f.cfg.Upload.MaxFileSize)
	}
	if strings.TrimSpace(in.OriginalName) == "" {
		return "", fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}
	in.Metadata = in.Metadata.WithoutReserved()

	declared, err := extractMimeType(in.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	mimeType := resolveMimeType(declared, in.Data)

	if f.cfg.Upload.AllowAnyMimeType {
		return mimeType, nil
	}

	exts, ok := allowedExtensions(mimeType)
	if !ok {
		return "", fmt.Errorf("%w: file type %s is not allowed", domain.ErrValidation, mimeType)
	}
	if err := validateExtension(in.OriginalName, exts); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return mimeType, nil
}

// resolveMimeType prefers the sniffed type unless sniffing only found a generic one
func resolveMimeType(declared string, data []byte) string {
	sniffed, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	sniffed = strings.ToLower(strings.TrimSpace(sniffed))

	generic := sniffed == "" || sniffed == "application/octet-stream" || sniffed == "text/plain"
	if generic && declared != "" {
		if _, ok := allowedExtensions(declared); ok {
			return declared
		}
	}
	if sniffed == "" {
		return declared
	}
	return sniffed
}

func extractMimeType(contentType string) (string, error) {
	if strings.TrimSpace(contentType) == "" {
		return "", nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("invalid content type %q: %w", contentType, err)
	}
	return strings.ToLower(mediaType), nil
}

func validateExtension(filename string, allowedExts []string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("missing file extension")
	}
	for _, allowed := range allowedExts {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("extension %s does not match the file content", ext)
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func isProcessableImage(mimeType string) bool {
	return processableImages[mimeType]
}

func bodyOf(data []byte) *bytes.Reader {
	return bytes.NewReader(data)
}
