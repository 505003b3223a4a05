package postgres_test

import (
	"context"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newRecord(ownerID string) *domain.FileRecord {
	id := uuid.New()
	return &domain.FileRecord{
		ID:           id,
		OwnerID:      ownerID,
		OriginalName: "report.pdf",
		StorageKey:   ownerID + "/document/" + id.String() + "-report.pdf",
		MimeType:     "application/pdf",
		SizeBytes:    2048,
		Status:       domain.FileStatusPending,
		Category:     domain.FileCategoryDocument,
		ContentHash:  "hash-" + id.String(),
		ScanStatus:   domain.ScanStatusPending,
		Metadata:     domain.Metadata{"pages": domain.Int(3)},
	}
}

// createReady inserts a record and walks it to ready
func createReady(t *testing.T, ctx context.Context, repo port.FileRepository, record *domain.FileRecord) {
	t.Helper()
	require.NoError(t, repo.Create(ctx, record))
	require.NoError(t, repo.UpdateStatus(ctx, record.ID, domain.FileStatusPending, domain.FileStatusUploaded))
	require.NoError(t, repo.UpdateStatus(ctx, record.ID, domain.FileStatusUploaded, domain.FileStatusReady))
	record.Status = domain.FileStatusReady
}
