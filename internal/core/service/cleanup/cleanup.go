package cleanup

import (
	"file-service/internal/core/port"
	"file-service/internal/metrics"
	"log/slog"
	"time"
)

// DefaultBatchSize is the number of records handled per sweep when none is configured
const DefaultBatchSize = 100

// Config is the retention policy
type Config struct {
	Bucket    string
	Window    time.Duration
	BatchSize int
}

type cleanupService struct {
	uow     port.UnitOfWork
	storage port.ObjectStore
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCleanupService creates the retention sweep
func NewCleanupService(uow port.UnitOfWork, storage port.ObjectStore, cfg Config, m *metrics.Metrics, logger *slog.Logger) port.RetentionService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &cleanupService{
		uow:     uow,
		storage: storage,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}
