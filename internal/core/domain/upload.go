package domain

import (
	"github.com/google/uuid"
)

// UploadInput is one file submitted to the pipeline
type UploadInput struct {
	Owner          Identity
	OrganizationID *string
	TeamID         *string
	OriginalName   string
	ContentType    string
	Data           []byte
	Category       FileCategory
	Description    *string
	IsPublic       bool
	Tags           []string
	Metadata       Metadata
}

// UploadFailure describes one rejected file of a batch
type UploadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadReport is the partial-success outcome of a batch upload
type UploadReport struct {
	Uploaded int
	Failed   int
	Files    []FileRecord
	Errors   []UploadFailure
}

// CleanupReport records the outcome of a best-effort cleanup
type CleanupReport struct {
	FileID  uuid.UUID
	Deleted []string
	Failed  map[string]error
}

// OK reports whether every key was removed
func (r CleanupReport) OK() bool {
	return len(r.Failed) == 0
}

// VersionInput is the content of a new version
type VersionInput struct {
	FileID     uuid.UUID
	Data       []byte
	UploadedBy Identity
	Comment    *string
}

// SharedFile is the result of resolving a public link.
// DownloadURL is only set when the link grants download.
type SharedFile struct {
	File        FileRecord
	Share       ShareGrant
	DownloadURL string
}

// RetentionReport summarizes one retention sweep
type RetentionReport struct {
	Scanned int
	Purged  int
	Failed  int
}
