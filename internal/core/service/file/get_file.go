package file

import (
	"context"
	"file-service/internal/core/domain"
	"log/slog"

	"github.com/google/uuid"
)

// GetFile returns a file the requester may read and counts the access
func (f *fileService) GetFile(ctx context.Context, id uuid.UUID, requester domain.Identity) (*domain.FileRecord, error) {
	record, err := f.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := f.requireAccess(ctx, record, requester); err != nil {
		return nil, err
	}

	now := f.now()
	if err := f.uow.FileRepo().IncrementAccess(ctx, record.ID, now); err != nil {
		f.logger.Warn("failed to record file access",
			slog.String("fileID", record.ID.String()),
			slog.Any("error", err))
	} else {
		record.AccessCount++
		record.LastAccessedAt = &now
	}

	return record, nil
}

// DownloadFile opens the current version of a ready file, the caller closes the body
func (f *fileService) DownloadFile(ctx context.Context, id uuid.UUID, requester domain.Identity) (*domain.FileRecord, *domain.DownloadResult, error) {
	record, err := f.GetFile(ctx, id, requester)
	if err != nil {
		return nil, nil, err
	}
	if record.Status != domain.FileStatusReady {
		return nil, nil, domain.ErrFileNotReady
	}

	if err := f.requireDownload(ctx, record, requester); err != nil {
		return nil, nil, err
	}

	key, err := f.currentKey(ctx, record)
	if err != nil {
		return nil, nil, err
	}

	result, err := f.storage.Download(ctx, f.cfg.Bucket, key)
	if err != nil {
		return nil, nil, err
	}
	if result.ContentType == "" {
		result.ContentType = record.MimeType
	}

	return record, result, nil
}

// SearchFiles returns one page of non-deleted files matching opts
func (f *fileService) SearchFiles(ctx context.Context, opts domain.SearchOptions) (*domain.SearchResult, error) {
	opts.Normalize()

	files, total, err := f.uow.FileRepo().Search(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &domain.SearchResult{
		Files:  files,
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}, nil
}

// DeleteFile soft-deletes a file, blobs stay until the retention sweep
func (f *fileService) DeleteFile(ctx context.Context, id uuid.UUID, requester domain.Identity) error {
	record, err := f.loadActive(ctx, id)
	if err != nil {
		return err
	}

	if err := f.requirePermission(ctx, record, requester, domain.PermissionDelete); err != nil {
		return err
	}

	now := f.now()
	if err := f.uow.FileRepo().MarkDeleted(ctx, record.ID, requester.UserID, now); err != nil {
		return err
	}
	f.grants.Invalidate(record.ID)

	record.Status = domain.FileStatusDeleted
	record.DeletedAt = &now
	record.DeletedBy = &requester.UserID

	f.logger.Info("file deleted",
		slog.String("fileID", record.ID.String()),
		slog.String("deletedBy", requester.UserID))
	f.publish(ctx, domain.FileEventDeleted, record, requester.UserID, "")

	return nil
}
