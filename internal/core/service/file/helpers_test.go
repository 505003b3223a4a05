package file_test

import (
	"bytes"
	"context"
	"file-service/internal/adapters/eventbroker"
	"file-service/internal/adapters/repository"
	"file-service/internal/adapters/scanner"
	"file-service/internal/adapters/storage"
	"file-service/internal/config"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"file-service/internal/core/service/access"
	"file-service/internal/core/service/file"
	imgsvc "file-service/internal/core/service/image"
	"file-service/internal/metrics"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testBucket = "files"
	ownerID    = "owner-1"
	strangerID = "user-2"
)

var pdfData = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type fixture struct {
	ctx       context.Context
	uow       *repository.MockUnitOfWork
	fileRepo  *repository.MockFileRepository
	shareRepo *repository.MockShareRepository
	versions  *repository.MockVersionRepository
	tagRepo   *repository.MockTagRepository
	storage   *storage.MockStorage
	images    *imgsvc.MockImageProcessor
	scanner   *scanner.MockScanner
	publisher *eventbroker.MockPublisher
	metrics   *metrics.Metrics
	service   port.FileService
}

func newFixture(t *testing.T, opts ...func(cfg *file.Config)) *fixture {
	t.Helper()

	cfg := file.Config{
		Bucket:         testBucket,
		Upload:         config.FileUploadConfig{MaxFileSize: 1 << 20, MaxFilesPerBatch: 10},
		DownloadURLTTL: 15 * time.Minute,
		MaxURLTTL:      24 * time.Hour,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := metrics.New(prometheus.NewRegistry())
	uow := repository.NewMockUnitOfWork()
	f := &fixture{
		ctx:       context.Background(),
		uow:       uow,
		fileRepo:  uow.GetFileRepoMock(),
		shareRepo: uow.GetShareRepoMock(),
		versions:  uow.GetVersionRepoMock(),
		tagRepo:   uow.GetTagRepoMock(),
		storage:   storage.NewMockStorage(),
		images:    imgsvc.NewMockImageProcessor(),
		scanner:   scanner.NewMockScanner(),
		publisher: eventbroker.NewMockPublisher(),
		metrics:   m,
	}
	f.service = file.NewFileService(
		f.uow,
		f.storage,
		f.images,
		f.scanner,
		f.publisher,
		access.NewGrantCache(16, time.Minute, m),
		cfg,
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func (f *fixture) assertMocks(t *testing.T) {
	t.Helper()
	f.uow.AssertExpectations(t)
	f.fileRepo.AssertExpectations(t)
	f.shareRepo.AssertExpectations(t)
	f.versions.AssertExpectations(t)
	f.tagRepo.AssertExpectations(t)
	f.storage.AssertExpectations(t)
	f.images.AssertExpectations(t)
	f.scanner.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func (f *fixture) expectEvent(eventType domain.FileEventType) {
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.FileEvent) bool {
		return e.Type == eventType
	})).Return(nil).Once()
}

func owner() domain.Identity {
	return domain.Identity{UserID: ownerID}
}

func stranger() domain.Identity {
	return domain.Identity{UserID: strangerID, OrganizationID: "org-2", TeamIDs: []string{"team-9"}}
}

func readyRecord(mimeType string) *domain.FileRecord {
	return &domain.FileRecord{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		OriginalName: "file.bin",
		StorageKey:   "org-1/" + ownerID + "/document/1700000000000-abcdef0123456789-file.bin",
		MimeType:     mimeType,
		SizeBytes:    42,
		Status:       domain.FileStatusReady,
		Category:     domain.FileCategoryDocument,
		ScanStatus:   domain.ScanStatusClean,
	}
}

func grantFor(fileID uuid.UUID, target string, perms ...domain.Permission) domain.ShareGrant {
	return domain.ShareGrant{
		ID:           uuid.New(),
		FileID:       fileID,
		SharedByID:   ownerID,
		SharedWithID: &target,
		ShareType:    domain.ShareTypeUser,
		Permissions:  perms,
		IsActive:     true,
	}
}

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func processedFor(key string) *domain.ProcessedImage {
	variants := make(map[string]domain.ImageVariant, len(domain.DefaultImageSizes))
	for _, size := range domain.DefaultImageSizes {
		variants[size.Name] = domain.ImageVariant{
			Key:    domain.VariantKey(key, size.Name, "png"),
			Width:  16,
			Height: 16,
			Format: domain.ImageFormatPNG,
		}
	}
	return &domain.ProcessedImage{
		Original: domain.ImageVariant{Key: key, Width: 16, Height: 16, Format: domain.ImageFormatPNG},
		Variants: variants,
	}
}
