package file

import (
	"file-service/internal/core/domain"
	"strings"
	"time"

	"github.com/google/uuid"
)

// V1UploadResponse is the response to an upload
type V1UploadResponse struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Size         int64               `json:"size"`
	MimeType     string              `json:"mimeType"`
	Category     domain.FileCategory `json:"category"`
	Status       domain.FileStatus   `json:"status"`
	URL          string              `json:"url"`
	ThumbnailURL *string             `json:"thumbnailUrl"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// V1FileResponse is the detailed view of a file
type V1FileResponse struct {
	V1UploadResponse
	OwnerID        string            `json:"ownerId"`
	OrganizationID *string           `json:"organizationId,omitempty"`
	TeamID         *string           `json:"teamId,omitempty"`
	Description    *string           `json:"description,omitempty"`
	IsPublic       bool              `json:"isPublic"`
	ScanStatus     domain.ScanStatus `json:"scanStatus"`
	Metadata       domain.Metadata   `json:"metadata,omitempty"`
	AccessCount    int64             `json:"accessCount"`
	LastAccessedAt *time.Time        `json:"lastAccessedAt,omitempty"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// V1VersionResponse is the view of a file version
type V1VersionResponse struct {
	ID            uuid.UUID       `json:"id"`
	FileID        uuid.UUID       `json:"fileId"`
	VersionNumber int             `json:"versionNumber"`
	Size          int64           `json:"size"`
	ContentHash   string          `json:"contentHash"`
	UploadedBy    string          `json:"uploadedBy"`
	Comment       *string         `json:"comment,omitempty"`
	Metadata      domain.Metadata `json:"metadata,omitempty"`
	IsCurrent     bool            `json:"isCurrent"`
	CreatedAt     time.Time       `json:"createdAt"`
	RestoredAt    *time.Time      `json:"restoredAt,omitempty"`
	RestoredBy    *string         `json:"restoredBy,omitempty"`
}

// V1ShareResponse is the view of a share grant, the password hash never leaves the service
type V1ShareResponse struct {
	ID                uuid.UUID           `json:"id"`
	FileID            uuid.UUID           `json:"fileId"`
	ShareType         domain.ShareType    `json:"shareType"`
	SharedWithID      *string             `json:"sharedWithId,omitempty"`
	Permissions       []domain.Permission `json:"permissions"`
	ShareToken        *string             `json:"shareToken,omitempty"`
	ShareURL          *string             `json:"shareUrl,omitempty"`
	PasswordProtected bool                `json:"passwordProtected"`
	ExpiresAt         *time.Time          `json:"expiresAt,omitempty"`
	MaxAccessCount    int                 `json:"maxAccessCount"`
	AccessCount       int                 `json:"accessCount"`
	IsActive          bool                `json:"isActive"`
	CreatedAt         time.Time           `json:"createdAt"`
}

// V1TagResponse is a tag attached to a file
type V1TagResponse struct {
	Tag       string    `json:"tag"`
	AddedBy   string    `json:"addedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *HandlerV1) uploadResponse(record *domain.FileRecord) V1UploadResponse {
	resp := V1UploadResponse{
		ID:        record.ID,
		Name:      record.OriginalName,
		Size:      record.SizeBytes,
		MimeType:  record.MimeType,
		Category:  record.Category,
		Status:    record.Status,
		URL:       "/api/v1/files/" + record.ID.String() + "/download",
		CreatedAt: record.CreatedAt,
	}
	if h.opts.PublicBaseURL == "" {
		return resp
	}
	resp.URL = h.objectURL(record.StorageKey)
	if key, ok := record.Metadata.String(domain.MetaThumbnailKey); ok && domain.OwnsObjectKey(record.StorageKey, key) {
		thumb := h.objectURL(key)
		resp.ThumbnailURL = &thumb
	}
	return resp
}

func (h *HandlerV1) fileResponse(record *domain.FileRecord) V1FileResponse {
	return V1FileResponse{
		V1UploadResponse: h.uploadResponse(record),
		OwnerID:          record.OwnerID,
		OrganizationID:   record.OrganizationID,
		TeamID:           record.TeamID,
		Description:      record.Description,
		IsPublic:         record.IsPublic,
		ScanStatus:       record.ScanStatus,
		Metadata:         record.Metadata,
		AccessCount:      record.AccessCount,
		LastAccessedAt:   record.LastAccessedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

func (h *HandlerV1) objectURL(key string) string {
	return strings.TrimRight(h.opts.PublicBaseURL, "/") + "/" + key
}

func versionResponse(v domain.FileVersion) V1VersionResponse {
	return V1VersionResponse{
		ID:            v.ID,
		FileID:        v.FileID,
		VersionNumber: v.VersionNumber,
		Size:          v.SizeBytes,
		ContentHash:   v.ContentHash,
		UploadedBy:    v.UploadedBy,
		Comment:       v.Comment,
		Metadata:      v.Metadata,
		IsCurrent:     v.IsCurrent,
		CreatedAt:     v.CreatedAt,
		RestoredAt:    v.RestoredAt,
		RestoredBy:    v.RestoredBy,
	}
}

func shareResponse(s *domain.ShareGrant) V1ShareResponse {
	resp := V1ShareResponse{
		ID:                s.ID,
		FileID:            s.FileID,
		ShareType:         s.ShareType,
		SharedWithID:      s.SharedWithID,
		Permissions:       s.Permissions,
		ShareToken:        s.ShareToken,
		PasswordProtected: s.RequiresPassword(),
		ExpiresAt:         s.ExpiresAt,
		MaxAccessCount:    s.MaxAccessCount,
		AccessCount:       s.AccessCount,
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt,
	}
	if s.ShareToken != nil {
		url := "/api/v1/files/shared/" + *s.ShareToken
		resp.ShareURL = &url
	}
	return resp
}

func tagResponses(tags []domain.FileTag) []V1TagResponse {
	out := make([]V1TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, V1TagResponse{Tag: t.Tag, AddedBy: t.AddedBy, CreatedAt: t.CreatedAt})
	}
	return out
}
