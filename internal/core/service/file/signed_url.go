package file

import (
	"context"
	"file-service/internal/core/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GetSignedURL signs a direct storage URL for the current version of a ready file.
// Download needs the download permission, upload needs edit and targets the current key.
func (f *fileService) GetSignedURL(ctx context.Context, id uuid.UUID, requester domain.Identity, action domain.SignedURLAction, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = f.cfg.DownloadURLTTL
	}
	if f.cfg.MaxURLTTL > 0 && ttl > f.cfg.MaxURLTTL {
		return "", fmt.Errorf("%w: ttl %s exceeds the maximum of %s", domain.ErrValidation, ttl, f.cfg.MaxURLTTL)
	}

	record, err := f.loadReady(ctx, id)
	if err != nil {
		return "", err
	}

	switch action {
	case domain.SignedURLActionDownload:
		if err := f.requireDownload(ctx, record, requester); err != nil {
			return "", err
		}
		key, err := f.currentKey(ctx, record)
		if err != nil {
			return "", err
		}
		return f.storage.SignedDownloadURL(ctx, f.cfg.Bucket, key, ttl, domain.ResponseOverrides{
			ContentType:        record.MimeType,
			ContentDisposition: attachmentDisposition(record.OriginalName),
		})
	case domain.SignedURLActionUpload:
		if err := f.requirePermission(ctx, record, requester, domain.PermissionEdit); err != nil {
			return "", err
		}
		key, err := f.currentKey(ctx, record)
		if err != nil {
			return "", err
		}
		return f.storage.SignedUploadURL(ctx, f.cfg.Bucket, key, ttl, record.MimeType)
	}

	return "", fmt.Errorf("%w: unknown signed url action %q", domain.ErrValidation, action)
}
