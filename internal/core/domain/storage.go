package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// UploadResult is returned by the object store after a durable write
type UploadResult struct {
	Key       string
	ETag      string
	VersionID string
}

// DownloadResult is an open object stream, the caller must close Body
type DownloadResult struct {
	Body        io.ReadCloser
	ContentType string
	Length      int64
	Metadata    map[string]string
}

// ObjectInfo describes a listed object
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// ObjectListing is a page of objects
type ObjectListing struct {
	Objects          []ObjectInfo
	NextContinuation string
	IsTruncated      bool
}

// ResponseOverrides are response headers forced on a signed download
type ResponseOverrides struct {
	ContentType        string
	ContentDisposition string
}

// SignedURLAction is the operation a signed URL allows
type SignedURLAction string

const (
	SignedURLActionDownload SignedURLAction = "download"
	SignedURLActionUpload   SignedURLAction = "upload"
)

// ParseSignedURLAction validates an action, defaulting to download
func ParseSignedURLAction(raw string) (SignedURLAction, error) {
	switch SignedURLAction(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SignedURLActionDownload:
		return SignedURLActionDownload, nil
	case SignedURLActionUpload:
		return SignedURLActionUpload, nil
	}
	return "", fmt.Errorf("%w: unknown signed url action %q", ErrValidation, raw)
}

// SanitizeFilename lowercases name and replaces every char outside [a-z0-9.-] with '_'
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// GenerateStorageKey produces {prefix}/{timestamp}-{randomHex}-{sanitizedFilename}
func GenerateStorageKey(prefix, filename string, now time.Time) (string, error) {
	random := make([]byte, 8)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("failed to generate random key part: %w", err)
	}
	name := fmt.Sprintf("%d-%s-%s", now.UnixMilli(), hex.EncodeToString(random), SanitizeFilename(filename))
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name, nil
	}
	return prefix + "/" + name, nil
}

// VariantKey derives {dir}/{base}_{sizeName}.{ext} from an original key
func VariantKey(originalKey, sizeName, ext string) string {
	dir, file := path.Split(originalKey)
	base := strings.TrimSuffix(file, path.Ext(file))
	return fmt.Sprintf("%s%s_%s.%s", dir, base, sizeName, ext)
}

// OwnsObjectKey reports whether key was derived from originalKey: the original
// itself, its variants, its version objects and their variants
func OwnsObjectKey(originalKey, key string) bool {
	if originalKey == "" || key == "" {
		return false
	}
	stem := strings.TrimSuffix(originalKey, path.Ext(originalKey))
	return key == originalKey || strings.HasPrefix(key, stem) && !strings.Contains(key[len(stem):], "/")
}
