package main

import (
	"context"
	"database/sql"
	"errors"
	"file-service/internal/adapters/eventbroker/nats"
	"file-service/internal/adapters/handlers/http/chi"
	file2 "file-service/internal/adapters/handlers/http/chi/v1/file"
	"file-service/internal/adapters/handlers/http/chi/v1/tag"
	"file-service/internal/adapters/repository/postgres"
	"file-service/internal/adapters/scanner/clamav"
	"file-service/internal/adapters/storage/minio"
	"file-service/internal/adapters/storage/s3"
	"file-service/internal/config"
	"file-service/internal/core/port"
	"file-service/internal/core/service/access"
	"file-service/internal/core/service/cleanup"
	"file-service/internal/core/service/file"
	"file-service/internal/core/service/image"
	tagservice "file-service/internal/core/service/tag"
	"file-service/internal/logger"
	"file-service/internal/metrics"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// eventPublisher is what main needs from a publisher
type eventPublisher interface {
	port.EventPublisher
	Close() error
}

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// .env is optional, real environment variables win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, flush, err := logger.New(cfg.Env.Env, cfg.Sentry.DSN, os.Stdout)
	if err != nil {
		slog.Error("failed to init logger", "error", err)
		os.Exit(1)
	}
	defer flush()

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	//scanner
	scanner := clamav.NewScanner(cfg.Scanner, logger)
	if err := scanner.Ping(); err != nil {
		logger.Warn("malware scanner unreachable", "address", cfg.Scanner.Address, "fail_closed", cfg.Scanner.FailClosed, "error", err)
	}

	//events
	publisher, err := initPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", "error", err)
		}
	}()

	//metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	//repositories
	tagRepo := postgres.NewFileTagRepository(db)
	unitOfWork := postgres.NewUnitOfWork(db)

	//services
	images := image.NewProcessor(storage, cfg.Storage.Bucket, logger)
	grants := access.NewGrantCache(cfg.Cache.GrantCacheSize, cfg.Cache.GrantCacheTTL, m)
	tagService := tagservice.NewTagService(tagRepo)
	fileService := file.NewFileService(unitOfWork, storage, images, scanner, publisher, grants, file.Config{
		Bucket:            cfg.Storage.Bucket,
		Upload:            cfg.Upload,
		ScannerFailClosed: cfg.Scanner.FailClosed,
		DownloadURLTTL:    cfg.Storage.DownloadSignedURLDuration,
		MaxURLTTL:         cfg.Storage.MaxSignedURLDuration,
	}, m, logger)
	cleanupService := cleanup.NewCleanupService(unitOfWork, storage, cleanup.Config{
		Bucket:    cfg.Storage.Bucket,
		Window:    cfg.Retention.Window,
		BatchSize: cfg.Retention.BatchSize,
	}, m, logger)

	//http
	tagHandler := tag.NewTagHandlerV1(tagService, logger)
	fileHandler := file2.NewFileHandlerV1(fileService, logger, file2.Options{
		MaxFileSize:      cfg.Upload.MaxFileSize,
		MaxFilesPerBatch: cfg.Upload.MaxFilesPerBatch,
		DefaultURLTTL:    cfg.Storage.DownloadSignedURLDuration,
		PublicBaseURL:    cfg.Storage.PublicBaseURL,
	})

	router := chi.NewRouter(logger, m, registry, tagHandler, fileHandler, chi.Options{
		Env:            cfg.Env.Env,
		RequestTimeout: cfg.Server.RequestTimeout,
		// a full batch plus room for the form fields
		MaxBodyBytes: cfg.Upload.MaxFileSize*int64(cfg.Upload.MaxFilesPerBatch) + 1<<20,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init retention task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initRetentionTask(ctx, cleanupService, cfg.Retention.Every, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}

func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (port.ObjectStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return s3.NewAdapter(ctx, cfg.S3, cfg.Storage.Bucket, logger)
	default:
		return minio.NewAdapter(ctx, cfg.Minio, cfg.Storage.Bucket, logger)
	}
}

func initPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (eventPublisher, error) {
	if cfg.URL == "" {
		logger.Info("NATS_URL not set, lifecycle events are dropped")
		return nats.NoopPublisher{}, nil
	}
	return nats.NewPublisher(ctx, cfg, logger)
}

func initRetentionTask(ctx context.Context, service port.RetentionService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("retention task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			report, err := service.PurgeDeleted(ctx, time.Now().UTC())
			if err != nil {
				logger.Error("retention sweep failed", "error", err)
			} else {
				logger.Info("retention sweep completed", "scanned", report.Scanned, "purged", report.Purged, "failed", report.Failed)
			}
		case <-ctx.Done():
			logger.Info("retention task stopped")
			return
		}
	}

}
