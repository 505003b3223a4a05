package file

import (
	"context"
	"file-service/internal/core/domain"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// defaultThumbnailSize is used when a thumbnail transform names no box
const defaultThumbnailSize = 150

// TransformImage applies an edit to the current version of an image and stores the result as a new version
func (f *fileService) TransformImage(ctx context.Context, fileID uuid.UUID, req domain.TransformRequest, requester domain.Identity) (*domain.FileVersion, error) {
	record, err := f.loadReady(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !isProcessableImage(record.MimeType) {
		return nil, fmt.Errorf("%w: %s files cannot be transformed", domain.ErrValidation, record.MimeType)
	}

	if err := f.requirePermission(ctx, record, requester, domain.PermissionEdit); err != nil {
		return nil, err
	}

	data, err := f.readCurrent(ctx, record)
	if err != nil {
		return nil, err
	}

	out, err := f.applyTransform(data, req)
	if err != nil {
		return nil, err
	}

	comment := "transform: " + string(req.Operation)
	return f.addVersion(ctx, record, out, requester.UserID, &comment)
}

// readCurrent loads the current version content, bounded by the upload size limit
func (f *fileService) readCurrent(ctx context.Context, record *domain.FileRecord) ([]byte, error) {
	key, err := f.currentKey(ctx, record)
	if err != nil {
		return nil, err
	}

	obj, err := f.storage.Download(ctx, f.cfg.Bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()

	var body io.Reader = obj.Body
	limit := f.cfg.Upload.MaxFileSize
	if limit > 0 {
		body = io.LimitReader(obj.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", domain.ErrStorage, key, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: stored object exceeds the size limit", domain.ErrValidation)
	}
	return data, nil
}

func (f *fileService) applyTransform(data []byte, req domain.TransformRequest) ([]byte, error) {
	switch req.Operation {
	case domain.TransformResize:
		return f.images.Resize(data, req.Resize)
	case domain.TransformCrop:
		return f.images.Crop(data, req.Crop)
	case domain.TransformRotate:
		return f.images.Rotate(data, req.Angle)
	case domain.TransformConvert:
		return f.images.Convert(data, req.Format, req.Quality)
	case domain.TransformThumbnail:
		width, height := req.Resize.Width, req.Resize.Height
		if width <= 0 {
			width = defaultThumbnailSize
		}
		if height <= 0 {
			height = width
		}
		return f.images.Thumbnail(data, width, height)
	}
	return nil, fmt.Errorf("%w: unknown transform %q", domain.ErrValidation, req.Operation)
}
