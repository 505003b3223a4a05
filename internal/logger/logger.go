package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// IsDev reports whether env names a development deployment
func IsDev(env string) bool {
	return strings.EqualFold(env, "DEV")
}

// New builds the root logger.
// Development: text format with debug level. Otherwise: JSON format with info level.
// When sentryDSN is set, errors are also sent to Sentry. The returned func flushes Sentry.
func New(env, sentryDSN string, w io.Writer) (*slog.Logger, func(), error) {
	var handlers []slog.Handler

	if IsDev(env) {
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	flush := func() {}
	if sentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         sentryDSN,
			Environment: strings.ToLower(env),
		}); err != nil {
			return nil, flush, fmt.Errorf("failed to init sentry: %w", err)
		}
		handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		flush = func() { sentry.Flush(2 * time.Second) }
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	} else {
		handler = handlers[0]
	}

	return slog.New(handler).With("service", "file-service"), flush, nil
}
