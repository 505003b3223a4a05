package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStatus represents the status of a file
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusUploaded   FileStatus = "uploaded"
	FileStatusProcessing FileStatus = "processing"
	FileStatusReady      FileStatus = "ready"
	FileStatusFailed     FileStatus = "failed"
	FileStatusDeleted    FileStatus = "deleted"
)

// fileTransitions lists the statuses reachable from each status.
// pending -> failed covers a record whose first transition could not be written.
var fileTransitions = map[FileStatus][]FileStatus{
	FileStatusPending:    {FileStatusUploaded, FileStatusFailed},
	FileStatusUploaded:   {FileStatusProcessing, FileStatusReady, FileStatusFailed},
	FileStatusProcessing: {FileStatusReady, FileStatusFailed},
	FileStatusReady:      {FileStatusDeleted},
}

// CanTransitionTo reports whether the state machine allows s -> next
func (s FileStatus) CanTransitionTo(next FileStatus) bool {
	for _, allowed := range fileTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s FileStatus) IsTerminal() bool {
	return len(fileTransitions[s]) == 0
}

// Valid reports whether s is a known status
func (s FileStatus) Valid() bool {
	switch s {
	case FileStatusPending, FileStatusUploaded, FileStatusProcessing, FileStatusReady, FileStatusFailed, FileStatusDeleted:
		return true
	}
	return false
}

// FileCategory classifies uploads and is part of the storage key prefix
type FileCategory string

const (
	FileCategoryProfilePicture FileCategory = "profile_picture"
	FileCategoryDocument       FileCategory = "document"
	FileCategoryMedicalRecord  FileCategory = "medical_record"
	FileCategoryTrainingVideo  FileCategory = "training_video"
	FileCategoryGameVideo      FileCategory = "game_video"
	FileCategoryTeamPhoto      FileCategory = "team_photo"
	FileCategoryReport         FileCategory = "report"
	FileCategoryOther          FileCategory = "other"
)

// ParseFileCategory parses a category, empty input defaults to other
func ParseFileCategory(raw string) (FileCategory, error) {
	if strings.TrimSpace(raw) == "" {
		return FileCategoryOther, nil
	}
	c := FileCategory(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case FileCategoryProfilePicture, FileCategoryDocument, FileCategoryMedicalRecord, FileCategoryTrainingVideo,
		FileCategoryGameVideo, FileCategoryTeamPhoto, FileCategoryReport, FileCategoryOther:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, raw)
}

// ScanStatus is the malware scan verdict stored on a file
type ScanStatus string

const (
	ScanStatusPending  ScanStatus = "pending"
	ScanStatusClean    ScanStatus = "clean"
	ScanStatusInfected ScanStatus = "infected"
	ScanStatusError    ScanStatus = "error"
)

// FileRecord represents the persisted metadata of an uploaded file
type FileRecord struct {
	ID             uuid.UUID
	OwnerID        string
	OrganizationID *string
	TeamID         *string
	OriginalName   string
	StorageKey     string
	MimeType       string
	SizeBytes      int64
	Status         FileStatus
	Category       FileCategory
	Description    *string
	Metadata       Metadata
	ContentHash    string
	IsPublic       bool
	ScanStatus     ScanStatus
	ScanDate       *time.Time
	ScanResult     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
	DeletedBy      *string
	LastAccessedAt *time.Time
	AccessCount    int64
}

// IsImage reports whether the record goes through the image pipeline
func (f *FileRecord) IsImage() bool {
	return IsImageMimeType(f.MimeType)
}

// IsDeleted reports whether the record was soft-deleted
func (f *FileRecord) IsDeleted() bool {
	return f.DeletedAt != nil
}

// IsImageMimeType reports whether a MIME type is an image type
func IsImageMimeType(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// StoragePrefix builds {orgId?}/{teamId?}/{ownerId}/{category}
func StoragePrefix(organizationID, teamID *string, ownerID string, category FileCategory) string {
	parts := make([]string, 0, 4)
	if organizationID != nil && *organizationID != "" {
		parts = append(parts, *organizationID)
	}
	if teamID != nil && *teamID != "" {
		parts = append(parts, *teamID)
	}
	parts = append(parts, ownerID, string(category))
	return strings.Join(parts, "/")
}
