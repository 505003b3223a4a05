package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InitialVersionComment is the comment of the version created by an upload
const InitialVersionComment = "Initial upload"

// FileVersion represents one stored revision of a file
type FileVersion struct {
	ID            uuid.UUID
	FileID        uuid.UUID
	VersionNumber int
	StorageKey    string
	SizeBytes     int64
	ContentHash   string
	UploadedBy    string
	Comment       *string
	Metadata      Metadata
	IsCurrent     bool
	CreatedAt     time.Time
	RestoredAt    *time.Time
	RestoredBy    *string
}

// VersionStorageKey derives {storageKey}.v{N}; version 1 reuses the file key
func VersionStorageKey(storageKey string, versionNumber int) string {
	if versionNumber <= 1 {
		return storageKey
	}
	return fmt.Sprintf("%s.v%d", storageKey, versionNumber)
}
