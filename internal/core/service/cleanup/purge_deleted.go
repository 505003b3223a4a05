package cleanup

import (
	"context"
	"file-service/internal/core/domain"
	"fmt"
	"log/slog"
	"time"
)

// PurgeDeleted removes the blobs and rows of files soft-deleted before now minus the window.
// A file whose blobs cannot all be removed keeps its row and is retried by the next sweep.
func (c *cleanupService) PurgeDeleted(ctx context.Context, now time.Time) (domain.RetentionReport, error) {
	var report domain.RetentionReport

	files, err := c.uow.FileRepo().FindDeletedBefore(ctx, now.Add(-c.cfg.Window), c.cfg.BatchSize)
	if err != nil {
		return report, err
	}
	report.Scanned = len(files)

	for i := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := c.purge(ctx, &files[i]); err != nil {
			report.Failed++
			c.logger.Error("failed to purge deleted file",
				slog.String("fileID", files[i].ID.String()),
				slog.Any("error", err))
			continue
		}
		report.Purged++
		c.metrics.RetentionPurged.Inc()
	}

	c.logger.Info("retention sweep completed",
		slog.Int("scanned", report.Scanned),
		slog.Int("purged", report.Purged),
		slog.Int("failed", report.Failed))
	return report, nil
}

func (c *cleanupService) purge(ctx context.Context, file *domain.FileRecord) error {
	keys, err := c.objectKeys(ctx, file)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.storage.Delete(ctx, c.cfg.Bucket, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	return c.uow.FileRepo().Purge(ctx, file.ID)
}

// objectKeys lists the original, its variants and every version object with its variants
func (c *cleanupService) objectKeys(ctx context.Context, file *domain.FileRecord) ([]string, error) {
	seen := map[string]bool{}
	var keys []string
	add := func(key string) {
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		if !domain.OwnsObjectKey(file.StorageKey, key) {
			c.logger.Warn("skipping object not derived from the file key",
				slog.String("fileID", file.ID.String()),
				slog.String("key", key))
			return
		}
		keys = append(keys, key)
	}

	add(file.StorageKey)
	for _, key := range file.Metadata.VariantKeys() {
		add(key)
	}

	versions, err := c.uow.VersionRepo().ListByFileID(ctx, file.ID)
	if err != nil {
		return nil, err
	}
	for _, version := range versions {
		add(version.StorageKey)
		for _, key := range version.Metadata.VariantKeys() {
			add(key)
		}
	}
	return keys, nil
}
