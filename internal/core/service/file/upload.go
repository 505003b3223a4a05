package file

import (
	"context"
	"errors"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// scanDisabledResult is stored as scan result when scanning is switched off
const scanDisabledResult = "scanning disabled"

// UploadFile runs the full pipeline: pending record, scan, image or raw storage, ready + version 1.
// Any failure after the pending record exists marks it failed and removes what was stored.
func (f *fileService) UploadFile(ctx context.Context, in domain.UploadInput) (*domain.FileRecord, error) {
	mimeType, err := f.validateUpload(&in)
	if err != nil {
		f.metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = domain.FileCategoryOther
	}

	now := f.now()
	prefix := domain.StoragePrefix(in.OrganizationID, in.TeamID, in.Owner.UserID, category)
	storageKey, err := domain.GenerateStorageKey(prefix, in.OriginalName, now)
	if err != nil {
		f.metrics.Uploads.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	record := &domain.FileRecord{
		ID:             uuid.New(),
		OwnerID:        in.Owner.UserID,
		OrganizationID: in.OrganizationID,
		TeamID:         in.TeamID,
		OriginalName:   in.OriginalName,
		StorageKey:     storageKey,
		MimeType:       mimeType,
		SizeBytes:      int64(len(in.Data)),
		Status:         domain.FileStatusPending,
		Category:       category,
		Description:    in.Description,
		Metadata:       in.Metadata.Clone(),
		ContentHash:    contentHash(in.Data),
		IsPublic:       in.IsPublic,
		ScanStatus:     domain.ScanStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := f.uow.FileRepo().Create(ctx, record); err != nil {
		f.metrics.Uploads.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := f.transition(ctx, record, domain.FileStatusUploaded); err != nil {
		return nil, f.fail(ctx, record, nil, err)
	}

	if err := f.scan(ctx, record, in.Data); err != nil {
		return nil, f.fail(ctx, record, nil, err)
	}

	keys, err := f.store(ctx, record, in.Data)
	if err != nil {
		return nil, f.fail(ctx, record, keys, err)
	}

	if err := f.finalize(ctx, record, domain.NormalizeTags(in.Tags)); err != nil {
		return nil, f.fail(ctx, record, keys, err)
	}

	f.metrics.Uploads.WithLabelValues("ready").Inc()
	f.publish(ctx, domain.FileEventReady, record, record.OwnerID, "")

	f.logger.Info("file uploaded",
		slog.String("fileID", record.ID.String()),
		slog.String("storageKey", record.StorageKey),
		slog.String("mimeType", record.MimeType),
		slog.Int64("size", record.SizeBytes))

	return record, nil
}

// UploadFiles uploads each input in order, one failure does not stop the batch
func (f *fileService) UploadFiles(ctx context.Context, in []domain.UploadInput) domain.UploadReport {
	report := domain.UploadReport{
		Files:  make([]domain.FileRecord, 0, len(in)),
		Errors: make([]domain.UploadFailure, 0),
	}
	for i := range in {
		record, err := f.UploadFile(ctx, in[i])
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, domain.UploadFailure{Name: in[i].OriginalName, Error: err.Error()})
			continue
		}
		report.Uploaded++
		report.Files = append(report.Files, *record)
	}
	return report
}

func (f *fileService) transition(ctx context.Context, record *domain.FileRecord, to domain.FileStatus) error {
	if err := f.uow.FileRepo().UpdateStatus(ctx, record.ID, record.Status, to); err != nil {
		return err
	}
	record.Status = to
	return nil
}

type scanVerdict struct {
	status domain.ScanStatus
	result string
	at     time.Time
}

// scan stores the verdict of the upload content on record
func (f *fileService) scan(ctx context.Context, record *domain.FileRecord, data []byte) error {
	verdict, err := f.checkContent(ctx, record.ID, data)
	record.ScanStatus = verdict.status
	record.ScanDate = &verdict.at
	record.ScanResult = ptr(verdict.result)
	return err
}

// checkContent scans data and fails for infected content,
// and for scanner errors when the scanner is configured fail-closed
func (f *fileService) checkContent(ctx context.Context, fileID uuid.UUID, data []byte) (scanVerdict, error) {
	result := f.scanner.ScanBuffer(ctx, data)

	verdict := scanVerdict{at: result.ScannedAt}
	if verdict.at.IsZero() {
		verdict.at = f.now()
	}

	switch {
	case result.Skipped:
		f.metrics.ScanVerdicts.WithLabelValues("skipped").Inc()
		verdict.status = domain.ScanStatusPending
		verdict.result = scanDisabledResult
	case result.IsInfected:
		f.metrics.ScanVerdicts.WithLabelValues("infected").Inc()
		verdict.status = domain.ScanStatusInfected
		verdict.result = result.VirusName
		return verdict, fmt.Errorf("%w: %s", domain.ErrScanInfected, result.VirusName)
	case result.Err != nil:
		f.metrics.ScanVerdicts.WithLabelValues("error").Inc()
		verdict.status = domain.ScanStatusError
		verdict.result = result.Err.Error()
		if f.cfg.ScannerFailClosed {
			return verdict, fmt.Errorf("%w: %w", domain.ErrScanUnavailable, result.Err)
		}
		f.logger.Warn("malware scan failed, accepting content",
			slog.String("fileID", fileID.String()),
			slog.Any("error", result.Err))
	default:
		f.metrics.ScanVerdicts.WithLabelValues("clean").Inc()
		verdict.status = domain.ScanStatusClean
		verdict.result = string(domain.ScanStatusClean)
	}
	return verdict, nil
}

// store writes the content and returns every key written so far
func (f *fileService) store(ctx context.Context, record *domain.FileRecord, data []byte) ([]string, error) {
	if isProcessableImage(record.MimeType) {
		if err := f.transition(ctx, record, domain.FileStatusProcessing); err != nil {
			return nil, err
		}
	}

	meta, keys, err := f.writeContent(ctx, record, record.StorageKey, data)
	if err != nil {
		return keys, err
	}
	record.Metadata.Merge(meta)
	return keys, nil
}

// writeContent stores data at key, through the image engine for decodable images.
// It returns the image metadata to record and the keys written.
func (f *fileService) writeContent(ctx context.Context, record *domain.FileRecord, key string, data []byte) (domain.Metadata, []string, error) {
	if !isProcessableImage(record.MimeType) {
		_, err := f.storage.Upload(ctx, f.cfg.Bucket, key, bodyOf(data), int64(len(data)), record.MimeType, objectMetadata(record), nil)
		if err != nil {
			return nil, nil, err
		}
		return nil, []string{key}, nil
	}

	processed, err := f.images.Process(ctx, data, key, f.cfg.ImageSizes)
	if err != nil {
		return nil, nil, err
	}
	f.metrics.VariantsCreated.Add(float64(len(processed.Variants)))

	var meta domain.Metadata
	applyProcessed(&meta, processed)
	return meta, processedKeys(processed), nil
}

// finalize attaches tags, persists the record and creates version 1 in one transaction
func (f *fileService) finalize(ctx context.Context, record *domain.FileRecord, tags []string) error {
	now := f.now()
	err := f.uow.Execute(ctx, func(tx port.UnitOfWork) error {
		if len(tags) > 0 {
			if _, err := tx.TagRepo().AddMany(ctx, record.ID, tags, record.OwnerID); err != nil {
				return err
			}
		}

		record.UpdatedAt = now
		if err := tx.FileRepo().Update(ctx, record); err != nil {
			return err
		}
		if err := tx.FileRepo().UpdateStatus(ctx, record.ID, record.Status, domain.FileStatusReady); err != nil {
			return err
		}

		return tx.VersionRepo().Create(ctx, &domain.FileVersion{
			ID:            uuid.New(),
			FileID:        record.ID,
			VersionNumber: 1,
			StorageKey:    record.StorageKey,
			SizeBytes:     record.SizeBytes,
			ContentHash:   record.ContentHash,
			UploadedBy:    record.OwnerID,
			Comment:       ptr(domain.InitialVersionComment),
			Metadata:      record.Metadata.Clone(),
			IsCurrent:     true,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return err
	}
	record.Status = domain.FileStatusReady
	return nil
}

// fail marks record failed, removes stored keys and returns cause unchanged
func (f *fileService) fail(ctx context.Context, record *domain.FileRecord, keys []string, cause error) error {
	ctx = context.WithoutCancel(ctx)

	outcome := "failed"
	if errors.Is(cause, domain.ErrScanInfected) {
		outcome = "infected"
	}
	f.metrics.Uploads.WithLabelValues(outcome).Inc()

	from := record.Status
	record.UpdatedAt = f.now()
	err := f.uow.Execute(ctx, func(tx port.UnitOfWork) error {
		if err := tx.FileRepo().Update(ctx, record); err != nil {
			return err
		}
		return tx.FileRepo().UpdateStatus(ctx, record.ID, from, domain.FileStatusFailed)
	})
	if err != nil {
		f.logger.Error("failed to mark file as failed",
			slog.String("fileID", record.ID.String()),
			slog.Any("error", err))
	} else {
		record.Status = domain.FileStatusFailed
	}

	if len(keys) == 0 {
		keys = []string{record.StorageKey}
	}
	report := f.cleanup(ctx, record.ID, keys)
	if !report.OK() {
		f.logger.Warn("upload cleanup incomplete",
			slog.String("fileID", record.ID.String()),
			slog.Any("deleted", report.Deleted),
			slog.Int("failed", len(report.Failed)))
	}

	f.logger.Error("upload failed",
		slog.String("fileID", record.ID.String()),
		slog.String("storageKey", record.StorageKey),
		slog.Any("error", cause))
	f.publish(ctx, domain.FileEventFailed, record, record.OwnerID, cause.Error())

	return cause
}

// cleanup deletes keys one by one, collecting failures instead of stopping
func (f *fileService) cleanup(ctx context.Context, fileID uuid.UUID, keys []string) domain.CleanupReport {
	report := domain.CleanupReport{FileID: fileID, Failed: map[string]error{}}
	for _, key := range keys {
		if err := f.storage.Delete(ctx, f.cfg.Bucket, key); err != nil {
			report.Failed[key] = err
			continue
		}
		report.Deleted = append(report.Deleted, key)
	}
	return report
}

func applyProcessed(meta *domain.Metadata, processed *domain.ProcessedImage) {
	meta.Set(domain.MetaWidth, domain.Int(int64(processed.Original.Width)))
	meta.Set(domain.MetaHeight, domain.Int(int64(processed.Original.Height)))
	meta.Set(domain.MetaFormat, domain.String(string(processed.Original.Format)))
	for name, variant := range processed.Variants {
		meta.Set(domain.MetaVariantPrefix+name, domain.String(variant.Key))
	}
	if thumb, ok := processed.Variants["thumbnail"]; ok {
		meta.Set(domain.MetaThumbnailKey, domain.String(thumb.Key))
	}
	if preview, ok := processed.Variants["medium"]; ok {
		meta.Set(domain.MetaPreviewKey, domain.String(preview.Key))
	}
}

func processedKeys(processed *domain.ProcessedImage) []string {
	keys := make([]string, 0, len(processed.Variants)+1)
	keys = append(keys, processed.Original.Key)
	for _, variant := range processed.Variants {
		keys = append(keys, variant.Key)
	}
	return keys
}

func objectMetadata(record *domain.FileRecord) map[string]string {
	return map[string]string{
		"file-id":  record.ID.String(),
		"owner-id": record.OwnerID,
	}
}

func ptr[T any](v T) *T {
	return &v
}
