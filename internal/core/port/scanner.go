package port

import (
	"context"
	"file-service/internal/core/domain"
)

// MalwareScanner is an interface to define virus scanning
type MalwareScanner interface {
	Enabled() bool
	ScanBuffer(ctx context.Context, buf []byte) domain.ScanResult
}
