package file

import (
	"context"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// CreateVersion stores new content as the next version and makes it current
func (f *fileService) CreateVersion(ctx context.Context, in domain.VersionInput) (*domain.FileVersion, error) {
	size := int64(len(in.Data))
	if size == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrValidation)
	}
	if f.cfg.Upload.MaxFileSize > 0 && size > f.cfg.Upload.MaxFileSize {
		return nil, fmt.Errorf("%w: file size %d exceeds the limit of %d bytes", domain.ErrValidation, size, f.cfg.Upload.MaxFileSize)
	}

	record, err := f.loadReady(ctx, in.FileID)
	if err != nil {
		return nil, err
	}

	if err := f.requirePermission(ctx, record, in.UploadedBy, domain.PermissionEdit); err != nil {
		return nil, err
	}

	if isProcessableImage(record.MimeType) && !domain.IsImageMimeType(mimetype.Detect(in.Data).String()) {
		return nil, fmt.Errorf("%w: a new version of an image must be an image", domain.ErrValidation)
	}

	if _, err := f.checkContent(ctx, record.ID, in.Data); err != nil {
		f.logger.Warn("version content rejected",
			slog.String("fileID", record.ID.String()),
			slog.Any("error", err))
		return nil, err
	}

	return f.addVersion(ctx, record, in.Data, in.UploadedBy.UserID, in.Comment)
}

// addVersion reserves the next number, writes the content outside any transaction,
// then flips isCurrent under the file lock. Keys written by a failed attempt are removed.
func (f *fileService) addVersion(ctx context.Context, record *domain.FileRecord, data []byte, uploadedBy string, comment *string) (*domain.FileVersion, error) {
	number, err := f.uow.VersionRepo().ReserveNumber(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	key := domain.VersionStorageKey(record.StorageKey, number)
	meta, written, err := f.writeContent(ctx, record, key, data)
	if err != nil {
		f.discardVersion(ctx, record.ID, written)
		return nil, err
	}

	now := f.now()
	version := &domain.FileVersion{
		ID:            uuid.New(),
		FileID:        record.ID,
		VersionNumber: number,
		StorageKey:    key,
		SizeBytes:     int64(len(data)),
		ContentHash:   contentHash(data),
		UploadedBy:    uploadedBy,
		Comment:       comment,
		Metadata:      meta,
		IsCurrent:     true,
		CreatedAt:     now,
	}
	updated := *record
	updated.Metadata = record.Metadata.Clone()
	updated.SizeBytes = version.SizeBytes
	updated.ContentHash = version.ContentHash
	updated.Metadata.Merge(meta)
	updated.UpdatedAt = now

	err = f.uow.Execute(ctx, func(tx port.UnitOfWork) error {
		if err := tx.VersionRepo().LockFile(ctx, record.ID); err != nil {
			return err
		}
		if err := tx.VersionRepo().ClearCurrent(ctx, record.ID); err != nil {
			return err
		}
		if err := tx.VersionRepo().Create(ctx, version); err != nil {
			return err
		}
		return tx.FileRepo().Update(ctx, &updated)
	})
	if err != nil {
		f.discardVersion(ctx, record.ID, written)
		return nil, err
	}

	*record = updated
	f.logger.Info("file version created",
		slog.String("fileID", record.ID.String()),
		slog.Int("version", version.VersionNumber))
	return version, nil
}

func (f *fileService) discardVersion(ctx context.Context, fileID uuid.UUID, keys []string) {
	if len(keys) == 0 {
		return
	}
	report := f.cleanup(context.WithoutCancel(ctx), fileID, keys)
	if !report.OK() {
		f.logger.Warn("version cleanup incomplete",
			slog.String("fileID", fileID.String()),
			slog.Int("failed", len(report.Failed)))
	}
}

// ListVersions returns every version of a file the requester may read, newest first
func (f *fileService) ListVersions(ctx context.Context, fileID uuid.UUID, requester domain.Identity) ([]domain.FileVersion, error) {
	record, err := f.loadActive(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := f.requireAccess(ctx, record, requester); err != nil {
		return nil, err
	}

	return f.uow.VersionRepo().ListByFileID(ctx, record.ID)
}

// RestoreVersion makes an older version current again
func (f *fileService) RestoreVersion(ctx context.Context, fileID uuid.UUID, versionNumber int, requester domain.Identity) (*domain.FileVersion, error) {
	if versionNumber < 1 {
		return nil, fmt.Errorf("%w: version number must be positive", domain.ErrValidation)
	}

	record, err := f.loadReady(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := f.requirePermission(ctx, record, requester, domain.PermissionEdit); err != nil {
		return nil, err
	}

	now := f.now()
	updated := *record
	updated.Metadata = record.Metadata.Clone()

	var restored *domain.FileVersion
	err = f.uow.Execute(ctx, func(tx port.UnitOfWork) error {
		if err := tx.VersionRepo().LockFile(ctx, record.ID); err != nil {
			return err
		}
		version, err := tx.VersionRepo().FindByNumber(ctx, record.ID, versionNumber)
		if err != nil {
			return err
		}
		restored = version
		if version.IsCurrent {
			return nil
		}

		if err := tx.VersionRepo().ClearCurrent(ctx, record.ID); err != nil {
			return err
		}
		if err := tx.VersionRepo().MarkRestored(ctx, version.ID, requester.UserID, now); err != nil {
			return err
		}
		version.IsCurrent = true
		version.RestoredAt = &now
		version.RestoredBy = &requester.UserID

		updated.SizeBytes = version.SizeBytes
		updated.ContentHash = version.ContentHash
		updated.Metadata.Merge(version.Metadata)
		updated.UpdatedAt = now
		return tx.FileRepo().Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	f.logger.Info("file version restored",
		slog.String("fileID", record.ID.String()),
		slog.Int("version", versionNumber))
	return restored, nil
}
