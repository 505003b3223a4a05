package file

import (
	"context"
	"errors"
	"file-service/internal/config"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"file-service/internal/core/service/access"
	"file-service/internal/metrics"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Config is the configuration of the upload orchestrator
type Config struct {
	Bucket            string
	Upload            config.FileUploadConfig
	ScannerFailClosed bool
	DownloadURLTTL    time.Duration
	MaxURLTTL         time.Duration
	ImageSizes        []domain.ImageSize
}

type fileService struct {
	uow       port.UnitOfWork
	storage   port.ObjectStore
	images    port.ImageProcessor
	scanner   port.MalwareScanner
	publisher port.EventPublisher
	grants    *access.GrantCache
	cfg       Config
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewFileService creates a new file service
func NewFileService(
	uow port.UnitOfWork,
	storage port.ObjectStore,
	images port.ImageProcessor,
	scanner port.MalwareScanner,
	publisher port.EventPublisher,
	grants *access.GrantCache,
	cfg Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) port.FileService {
	if len(cfg.ImageSizes) == 0 {
		cfg.ImageSizes = domain.DefaultImageSizes
	}
	return &fileService{
		uow:       uow,
		storage:   storage,
		images:    images,
		scanner:   scanner,
		publisher: publisher,
		grants:    grants,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// loadActive returns a record that is not soft-deleted
func (f *fileService) loadActive(ctx context.Context, id uuid.UUID) (*domain.FileRecord, error) {
	record, err := f.uow.FileRepo().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.IsDeleted() {
		return nil, domain.ErrFileNotFound
	}
	return record, nil
}

// loadReady is loadActive restricted to READY records
func (f *fileService) loadReady(ctx context.Context, id uuid.UUID) (*domain.FileRecord, error) {
	record, err := f.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != domain.FileStatusReady {
		return nil, domain.ErrFileNotReady
	}
	return record, nil
}

// authorize runs check with the file grants, loading them only when the
// requester is neither owner nor covered by the public flag
func (f *fileService) authorize(ctx context.Context, record *domain.FileRecord, requester domain.Identity, check func(grants []domain.ShareGrant) bool) error {
	if check(nil) {
		return nil
	}

	grants, err := f.grants.Grants(ctx, record.ID, f.uow.ShareRepo())
	if err != nil {
		return err
	}
	if !check(grants) {
		return domain.ErrAccessDenied
	}
	return nil
}

func (f *fileService) requireAccess(ctx context.Context, record *domain.FileRecord, requester domain.Identity) error {
	now := f.now()
	return f.authorize(ctx, record, requester, func(grants []domain.ShareGrant) bool {
		return access.HasAccess(record, requester, grants, now)
	})
}

func (f *fileService) requirePermission(ctx context.Context, record *domain.FileRecord, requester domain.Identity, perm domain.Permission) error {
	now := f.now()
	return f.authorize(ctx, record, requester, func(grants []domain.ShareGrant) bool {
		return access.HasPermission(record, requester, grants, perm, now)
	})
}

func (f *fileService) requireDownload(ctx context.Context, record *domain.FileRecord, requester domain.Identity) error {
	now := f.now()
	return f.authorize(ctx, record, requester, func(grants []domain.ShareGrant) bool {
		return access.CanDownload(record, requester, grants, now)
	})
}

// currentKey is the storage key of the current version, the record key when none is recorded
func (f *fileService) currentKey(ctx context.Context, record *domain.FileRecord) (string, error) {
	version, err := f.uow.VersionRepo().FindCurrent(ctx, record.ID)
	if err != nil {
		if errors.Is(err, domain.ErrVersionNotFound) {
			return record.StorageKey, nil
		}
		return "", err
	}
	return version.StorageKey, nil
}

func (f *fileService) publish(ctx context.Context, eventType domain.FileEventType, record *domain.FileRecord, actorID, reason string) {
	event := domain.NewFileEvent(eventType, record, actorID, f.now())
	event.Reason = reason

	if err := f.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		f.metrics.EventsPublished.WithLabelValues(string(eventType), "error").Inc()
		f.logger.Warn("failed to publish file event",
			slog.String("type", string(eventType)),
			slog.String("fileID", record.ID.String()),
			slog.Any("error", err))
		return
	}
	f.metrics.EventsPublished.WithLabelValues(string(eventType), "ok").Inc()
}
