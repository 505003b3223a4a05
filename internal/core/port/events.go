package port

import (
	"context"
	"file-service/internal/core/domain"
)

// EventPublisher is an interface to define a lifecycle event publisher (nats, kafka, ...)
type EventPublisher interface {
	Publish(ctx context.Context, event domain.FileEvent) error
	Close() error
}
