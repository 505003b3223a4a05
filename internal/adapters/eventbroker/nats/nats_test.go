package nats_test

import (
	"context"
	"encoding/json"
	"file-service/internal/config"
	"file-service/internal/core/domain"
	"io"
	"log/slog"
	"testing"
	"time"

	nats2 "file-service/internal/adapters/eventbroker/nats"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupNATSContainer(t *testing.T) (string, func()) {
	if testing.Short() {
		t.Skip("skipping nats integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2.10-alpine",
		ExposedPorts: []string{"4222/tcp"},
		Cmd:          []string{"-js"},
		WaitingFor:   wait.ForLog("Server is ready"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	cleanup := func() {
		_ = container.Terminate(ctx)
	}

	return "nats://" + host + ":" + port.Port(), cleanup
}

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	natsURL, cleanup := setupNATSContainer(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.NATSConfig{URL: natsURL, StreamName: "FILES", SubjectPrefix: "files"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := nats2.NewPublisher(ctx, cfg, logger)
	require.NoError(t, err)
	defer publisher.Close()

	record := &domain.FileRecord{
		ID:         uuid.New(),
		OwnerID:    "user-1",
		StorageKey: "user-1/document/1-abc-report.pdf",
		MimeType:   "application/pdf",
		Status:     domain.FileStatusReady,
	}
	event := domain.NewFileEvent(domain.FileEventReady, record, "user-1", time.Now().UTC())

	// Act
	err = publisher.Publish(ctx, event)

	// Assert
	require.NoError(t, err)

	nc, err := nats.Connect(natsURL)
	require.NoError(t, err)
	defer nc.Close()
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	consumer, err := js.CreateOrUpdateConsumer(ctx, "FILES", jetstream.ConsumerConfig{
		FilterSubject: "files.ready",
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	require.NoError(t, err)

	batch, err := consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
	require.NoError(t, err)

	var received []domain.FileEvent
	for msg := range batch.Messages() {
		var got domain.FileEvent
		require.NoError(t, json.Unmarshal(msg.Data(), &got))
		received = append(received, got)
		assert.Equal(t, "files.ready", msg.Subject())
		_ = msg.Ack()
	}
	require.NoError(t, batch.Error())

	require.Len(t, received, 1)
	assert.Equal(t, record.ID, received[0].FileID)
	assert.Equal(t, domain.FileEventReady, received[0].Type)
	assert.Equal(t, domain.FileStatusReady, received[0].Status)
	assert.Equal(t, "application/pdf", received[0].MimeType)
}

func TestPublisher_DuplicateEventIsDeduplicated(t *testing.T) {
	// Arrange
	natsURL, cleanup := setupNATSContainer(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.NATSConfig{URL: natsURL, StreamName: "FILES", SubjectPrefix: "files"}
	publisher, err := nats2.NewPublisher(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer publisher.Close()

	event := domain.NewFileEvent(domain.FileEventDeleted, &domain.FileRecord{ID: uuid.New(), OwnerID: "user-1"}, "user-1", time.Now())

	// Act
	require.NoError(t, publisher.Publish(ctx, event))
	require.NoError(t, publisher.Publish(ctx, event))

	// Assert
	nc, err := nats.Connect(natsURL)
	require.NoError(t, err)
	defer nc.Close()
	js, err := jetstream.New(nc)
	require.NoError(t, err)
	stream, err := js.Stream(ctx, "FILES")
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
}

func TestPublisher_ConnectFailure(t *testing.T) {
	// Arrange
	cfg := config.NATSConfig{URL: "nats://127.0.0.1:1", StreamName: "FILES", SubjectPrefix: "files"}

	// Act
	publisher, err := nats2.NewPublisher(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Assert
	assert.Error(t, err)
	assert.Nil(t, publisher)
}

func TestNoopPublisher(t *testing.T) {
	// Arrange
	var publisher nats2.NoopPublisher

	// Act
	err := publisher.Publish(context.Background(), domain.FileEvent{Type: domain.FileEventShared})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, publisher.Close())
}
