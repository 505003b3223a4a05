package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env       Env
	Storage   StorageConfig
	Minio     MinioConfig
	S3        S3Config
	Upload    FileUploadConfig
	Scanner   ScannerConfig
	Retention RetentionConfig
	Cache     CacheConfig
	NATS      NATSConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Sentry    SentryConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host           string        `envconfig:"SERVER_HOST" default:"localhost"`
	Port           string        `envconfig:"SERVER_PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"2m"`
}

// StorageConfig selects the object store driver and the bucket files live in
type StorageConfig struct {
	Driver                    string        `envconfig:"STORAGE_DRIVER" default:"minio"`
	Bucket                    string        `envconfig:"STORAGE_BUCKET" required:"true"`
	PublicBaseURL             string        `envconfig:"STORAGE_PUBLIC_BASE_URL"`
	DownloadSignedURLDuration time.Duration `envconfig:"STORAGE_DOWNLOAD_SIGNED_URL_DURATION" default:"15m"`
	MaxSignedURLDuration      time.Duration `envconfig:"STORAGE_MAX_SIGNED_URL_DURATION" default:"24h"`
}

type MinioConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type S3Config struct {
	Region          string `envconfig:"S3_REGION" default:"us-east-1"`
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `envconfig:"S3_USE_PATH_STYLE" default:"false"`
}

type FileUploadConfig struct {
	MaxFileSize      int64 `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"104857600"` // 100MB
	MaxFilesPerBatch int   `envconfig:"UPLOAD_MAX_FILES_PER_BATCH" default:"10"`
	// AllowAnyMimeType disables the whitelist, sniffing still runs
	AllowAnyMimeType bool `envconfig:"UPLOAD_ALLOW_ANY_MIME_TYPE" default:"false"`
}

type ScannerConfig struct {
	Enabled    bool          `envconfig:"SCANNER_ENABLED" default:"false"`
	Address    string        `envconfig:"SCANNER_ADDRESS" default:"tcp://localhost:3310"`
	Timeout    time.Duration `envconfig:"SCANNER_TIMEOUT" default:"60s"`
	FailClosed bool          `envconfig:"SCANNER_FAIL_CLOSED" default:"false"`
}

type RetentionConfig struct {
	Window    time.Duration `envconfig:"RETENTION_WINDOW" default:"720h"`
	Every     time.Duration `envconfig:"RETENTION_EVERY" default:"1h"`
	BatchSize int           `envconfig:"RETENTION_BATCH_SIZE" default:"100"`
}

type CacheConfig struct {
	GrantCacheSize int           `envconfig:"GRANT_CACHE_SIZE" default:"1024"`
	GrantCacheTTL  time.Duration `envconfig:"GRANT_CACHE_TTL" default:"30s"`
}

type NATSConfig struct {
	URL           string `envconfig:"NATS_URL"`
	StreamName    string `envconfig:"NATS_STREAM_NAME" default:"FILES"`
	SubjectPrefix string `envconfig:"NATS_SUBJECT_PREFIX" default:"files"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

type SentryConfig struct {
	DSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "minio":
		if c.Minio.Endpoint == "" || c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
			return fmt.Errorf("minio driver requires MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
		}
	case "s3":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Retention.Every <= 0 {
		return fmt.Errorf("RETENTION_EVERY must be positive")
	}
	return nil
}
