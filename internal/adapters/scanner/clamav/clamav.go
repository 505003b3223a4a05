package clamav

import (
	"bytes"
	"context"
	"errors"
	"file-service/internal/config"
	"file-service/internal/core/domain"
	"fmt"
	"log/slog"
	"time"

	"github.com/dutchcoders/go-clamd"
)

// ErrScanFailed is an error thrown when clamd answers with an error verdict
var ErrScanFailed = errors.New("clamd scan failed")

// Scanner streams buffers to a clamd daemon with INSTREAM
type Scanner struct {
	client *clamd.Clamd
	config config.ScannerConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewScanner returns Scanner, no connection is made until the first scan
func NewScanner(cfg config.ScannerConfig, logger *slog.Logger) *Scanner {
	return &Scanner{
		client: clamd.NewClamd(cfg.Address),
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether scanning is configured
func (s *Scanner) Enabled() bool {
	return s.config.Enabled
}

// Ping checks the daemon is reachable
func (s *Scanner) Ping() error {
	if !s.config.Enabled {
		return nil
	}
	return s.client.Ping()
}

// ScanBuffer scans buf. Engine failures are reported in Err with IsInfected false.
func (s *Scanner) ScanBuffer(ctx context.Context, buf []byte) domain.ScanResult {
	if !s.config.Enabled {
		return domain.ScanResult{Skipped: true, ScannedAt: s.now()}
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	// closing abort makes go-clamd drop the connection
	abort := make(chan bool)
	done := make(chan domain.ScanResult, 1)
	go func() {
		done <- s.scan(buf, abort)
	}()

	select {
	case result := <-done:
		close(abort)
		return result
	case <-ctx.Done():
		close(abort)
		s.logger.Warn("scan aborted", slog.Int("size", len(buf)), slog.Any("error", ctx.Err()))
		return domain.ScanResult{Err: fmt.Errorf("scan aborted: %w", ctx.Err()), ScannedAt: s.now()}
	}
}

func (s *Scanner) scan(buf []byte, abort chan bool) domain.ScanResult {
	results, err := s.client.ScanStream(bytes.NewReader(buf), abort)
	if err != nil {
		return domain.ScanResult{Err: fmt.Errorf("failed to stream to clamd: %w", err), ScannedAt: s.now()}
	}

	verdict := domain.ScanResult{}
	answered := false
	for r := range results {
		answered = true
		switch r.Status {
		case clamd.RES_FOUND:
			verdict.IsInfected = true
			verdict.VirusName = r.Description
		case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
			if verdict.Err == nil {
				verdict.Err = fmt.Errorf("%w: %s", ErrScanFailed, r.Raw)
			}
		}
	}
	if !answered {
		verdict.Err = fmt.Errorf("%w: empty response", ErrScanFailed)
	}
	// a detection wins over a later error line
	if verdict.IsInfected {
		verdict.Err = nil
	}
	verdict.ScannedAt = s.now()

	if verdict.IsInfected {
		s.logger.Warn("malware detected", slog.String("virus", verdict.VirusName), slog.Int("size", len(buf)))
	}
	return verdict
}
