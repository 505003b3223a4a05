package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileEventType is the lifecycle event kind
type FileEventType string

const (
	FileEventReady   FileEventType = "ready"
	FileEventFailed  FileEventType = "failed"
	FileEventDeleted FileEventType = "deleted"
	FileEventShared  FileEventType = "shared"
)

// FileEvent is published after a lifecycle change of a file
type FileEvent struct {
	Type       FileEventType `json:"type"`
	FileID     uuid.UUID     `json:"fileId"`
	OwnerID    string        `json:"ownerId"`
	ActorID    string        `json:"actorId,omitempty"`
	StorageKey string        `json:"storageKey,omitempty"`
	MimeType   string        `json:"mimeType,omitempty"`
	Status     FileStatus    `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewFileEvent builds an event from the current state of a record
func NewFileEvent(eventType FileEventType, record *FileRecord, actorID string, now time.Time) FileEvent {
	return FileEvent{
		Type:       eventType,
		FileID:     record.ID,
		OwnerID:    record.OwnerID,
		ActorID:    actorID,
		StorageKey: record.StorageKey,
		MimeType:   record.MimeType,
		Status:     record.Status,
		OccurredAt: now,
	}
}
