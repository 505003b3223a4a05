package file_test

import (
	"errors"
	"file-service/internal/core/domain"
	"file-service/internal/core/service/file"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFileService_CreateVersion_Success(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	comment := "fixed typo"
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner(), Comment: &comment}
	key := record.StorageKey + ".v2"

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{}).Once()
	f.versions.On("ReserveNumber", f.ctx, record.ID).Return(2, nil).Once()
	f.storage.On("Upload", f.ctx, testBucket, key, mock.Anything, int64(len(pdfData)), "application/pdf", mock.Anything, mock.Anything).
		Return(&domain.UploadResult{Key: key}, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("ClearCurrent", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("Create", f.ctx, mock.MatchedBy(func(v *domain.FileVersion) bool {
		return v.VersionNumber == 2 && v.IsCurrent && v.StorageKey == key
	})).Return(nil).Once()
	f.fileRepo.On("Update", f.ctx, mock.MatchedBy(func(r *domain.FileRecord) bool {
		return r.SizeBytes == int64(len(pdfData))
	})).Return(nil).Once()

	// Act
	version, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, version.VersionNumber)
	assert.Equal(t, key, version.StorageKey)
	assert.Equal(t, ownerID, version.UploadedBy)
	assert.Equal(t, &comment, version.Comment)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScanVerdicts.WithLabelValues("clean")))
	f.assertMocks(t)
}

func TestFileService_CreateVersion_WritesContentOutsideTransaction(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}
	key := record.StorageKey + ".v5"
	inTx := false

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{}).Once()
	f.versions.On("ReserveNumber", f.ctx, record.ID).Return(5, nil).Once()
	f.storage.On("Upload", f.ctx, testBucket, key, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { assert.False(t, inTx, "content written while the file row is locked") }).
		Return(&domain.UploadResult{Key: key}, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Run(func(mock.Arguments) { inTx = true }).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("ClearCurrent", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("Create", f.ctx, mock.Anything).Return(nil).Once()
	f.fileRepo.On("Update", f.ctx, mock.Anything).Return(nil).Once()

	// Act
	version, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	require.NoError(t, err)
	assert.True(t, inTx)
	assert.Equal(t, 5, version.VersionNumber)
	assert.Equal(t, key, version.StorageKey)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_DeletedBeforeCommit(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}
	key := record.StorageKey + ".v2"

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{}).Once()
	f.versions.On("ReserveNumber", f.ctx, record.ID).Return(2, nil).Once()
	f.storage.On("Upload", f.ctx, testBucket, key, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.UploadResult{Key: key}, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(domain.ErrFileNotFound).Once()
	f.storage.On("Delete", mock.Anything, testBucket, key).Return(nil).Once()

	// Act
	version, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	assert.Nil(t, version)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	assert.Equal(t, domain.FileStatusReady, record.Status)
	f.versions.AssertNotCalled(t, "ClearCurrent", mock.Anything, mock.Anything)
	f.fileRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_DeletedBeforeReservation(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{}).Once()
	f.versions.On("ReserveNumber", f.ctx, record.ID).Return(0, domain.ErrFileNotFound).Once()

	// Act
	_, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_InfectedContentRejected(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{IsInfected: true, VirusName: "Eicar-Test-Signature"}).Once()

	// Act
	version, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	assert.Nil(t, version)
	assert.ErrorIs(t, err, domain.ErrScanInfected)
	assert.Contains(t, err.Error(), "Eicar-Test-Signature")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScanVerdicts.WithLabelValues("infected")))
	f.versions.AssertNotCalled(t, "ReserveNumber", mock.Anything, mock.Anything)
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_ScannerErrorFailClosed(t *testing.T) {
	// Arrange
	f := newFixture(t, func(cfg *file.Config) { cfg.ScannerFailClosed = true })
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{Err: errors.New("clamd unreachable")}).Once()

	// Act
	_, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	assert.ErrorIs(t, err, domain.ErrScanUnavailable)
	f.versions.AssertNotCalled(t, "ReserveNumber", mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_ScannerErrorFailsOpen(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}
	key := record.StorageKey + ".v2"

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{Err: errors.New("clamd unreachable")}).Once()
	f.versions.On("ReserveNumber", f.ctx, record.ID).Return(2, nil).Once()
	f.storage.On("Upload", f.ctx, testBucket, key, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.UploadResult{Key: key}, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("ClearCurrent", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("Create", f.ctx, mock.Anything).Return(nil).Once()
	f.fileRepo.On("Update", f.ctx, mock.Anything).Return(nil).Once()

	// Act
	version, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, version.VersionNumber)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScanVerdicts.WithLabelValues("error")))
	f.assertMocks(t)
}

func TestFileService_CreateVersion_ConflictRemovesWrittenObject(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}
	key := record.StorageKey + ".v2"

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{}).Once()
	f.versions.On("ReserveNumber", f.ctx, record.ID).Return(2, nil).Once()
	f.storage.On("Upload", f.ctx, testBucket, key, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.UploadResult{}, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("ClearCurrent", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("Create", f.ctx, mock.Anything).Return(domain.ErrVersionConflict).Once()
	f.storage.On("Delete", mock.Anything, testBucket, key).Return(nil).Once()

	// Act
	version, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	assert.Nil(t, version)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	f.fileRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_FailureRemovesUploadedObject(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}
	dbErr := errors.New("connection reset")
	key := record.StorageKey + ".v2"

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, pdfData).Return(domain.ScanResult{}).Once()
	f.versions.On("ReserveNumber", f.ctx, record.ID).Return(2, nil).Once()
	f.storage.On("Upload", f.ctx, testBucket, key, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.UploadResult{}, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("ClearCurrent", f.ctx, record.ID).Return(dbErr).Once()
	f.storage.On("Delete", mock.Anything, testBucket, key).Return(nil).Once()

	// Act
	_, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	assert.ErrorIs(t, err, dbErr)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_ImageRunsPipeline(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("image/png")
	data := pngData(t, 16, 16)
	in := domain.VersionInput{FileID: record.ID, Data: data, UploadedBy: owner()}
	key := record.StorageKey + ".v3"
	processed := processedFor(key)

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.scanner.On("ScanBuffer", f.ctx, data).Return(domain.ScanResult{}).Once()
	f.versions.On("ReserveNumber", f.ctx, record.ID).Return(3, nil).Once()
	f.images.On("Process", f.ctx, data, key, domain.DefaultImageSizes).Return(processed, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("ClearCurrent", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("Create", f.ctx, mock.Anything).Return(nil).Once()
	f.fileRepo.On("Update", f.ctx, mock.MatchedBy(func(r *domain.FileRecord) bool {
		thumb, _ := r.Metadata.String(domain.MetaThumbnailKey)
		return thumb == processed.Variants["thumbnail"].Key
	})).Return(nil).Once()

	// Act
	version, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	require.NoError(t, err)
	assert.Len(t, version.Metadata.VariantKeys(), 4)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_ImageRejectsNonImage(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("image/png")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: owner()}

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()

	// Act
	_, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_Denied(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	in := domain.VersionInput{FileID: record.ID, Data: pdfData, UploadedBy: stranger()}

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.shareRepo.On("ListByFileID", f.ctx, record.ID, true).Return([]domain.ShareGrant{}, nil).Once()

	// Act
	_, err := f.service.CreateVersion(f.ctx, in)

	// Assert
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	f.assertMocks(t)
}

func TestFileService_CreateVersion_RejectsEmpty(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	_, err := f.service.CreateVersion(f.ctx, domain.VersionInput{FileID: readyRecord("").ID, UploadedBy: owner()})

	// Assert
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.fileRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestFileService_ListVersions_RequiresReadAccess(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	record.IsPublic = true
	versions := []domain.FileVersion{{VersionNumber: 2, IsCurrent: true}, {VersionNumber: 1}}

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.versions.On("ListByFileID", f.ctx, record.ID).Return(versions, nil).Once()

	// Act
	got, err := f.service.ListVersions(f.ctx, record.ID, stranger())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, versions, got)
	f.assertMocks(t)
}

func TestFileService_RestoreVersion_FlipsCurrent(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	old := &domain.FileVersion{FileID: record.ID, VersionNumber: 1, StorageKey: record.StorageKey, SizeBytes: 7, ContentHash: "abc"}

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("FindByNumber", f.ctx, record.ID, 1).Return(old, nil).Once()
	f.versions.On("ClearCurrent", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("MarkRestored", f.ctx, old.ID, ownerID, mock.Anything).Return(nil).Once()
	f.fileRepo.On("Update", f.ctx, mock.MatchedBy(func(r *domain.FileRecord) bool {
		return r.SizeBytes == 7 && r.ContentHash == "abc"
	})).Return(nil).Once()

	// Act
	restored, err := f.service.RestoreVersion(f.ctx, record.ID, 1, owner())

	// Assert
	require.NoError(t, err)
	assert.True(t, restored.IsCurrent)
	require.NotNil(t, restored.RestoredBy)
	assert.Equal(t, ownerID, *restored.RestoredBy)
	assert.NotNil(t, restored.RestoredAt)
	f.assertMocks(t)
}

func TestFileService_RestoreVersion_AlreadyCurrent(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")
	current := &domain.FileVersion{FileID: record.ID, VersionNumber: 2, IsCurrent: true}

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("FindByNumber", f.ctx, record.ID, 2).Return(current, nil).Once()

	// Act
	restored, err := f.service.RestoreVersion(f.ctx, record.ID, 2, owner())

	// Assert
	require.NoError(t, err)
	assert.Same(t, current, restored)
	f.versions.AssertNotCalled(t, "ClearCurrent", mock.Anything, mock.Anything)
	f.assertMocks(t)
}

func TestFileService_RestoreVersion_Missing(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(nil).Once()
	f.versions.On("FindByNumber", f.ctx, record.ID, 9).Return(nil, domain.ErrVersionNotFound).Once()

	// Act
	_, err := f.service.RestoreVersion(f.ctx, record.ID, 9, owner())

	// Assert
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
	f.assertMocks(t)
}

func TestFileService_RestoreVersion_DeletedBeforeLock(t *testing.T) {
	// Arrange
	f := newFixture(t)
	record := readyRecord("application/pdf")

	f.fileRepo.On("FindByID", f.ctx, record.ID).Return(record, nil).Once()
	f.uow.On("Execute", f.ctx, mock.Anything).Return(nil).Once()
	f.versions.On("LockFile", f.ctx, record.ID).Return(domain.ErrFileNotFound).Once()

	// Act
	restored, err := f.service.RestoreVersion(f.ctx, record.ID, 1, owner())

	// Assert
	assert.Nil(t, restored)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	f.versions.AssertNotCalled(t, "FindByNumber", mock.Anything, mock.Anything, mock.Anything)
	f.fileRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.assertMocks(t)
}
