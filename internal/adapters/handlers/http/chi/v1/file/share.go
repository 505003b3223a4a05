package file

import (
	"encoding/json"
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/domain"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// HeaderSharePassword carries the password of a protected link
const HeaderSharePassword = "X-Share-Password"

// V1ShareRequest is the body of a share request
type V1ShareRequest struct {
	ShareType      string     `json:"shareType"`
	SharedWithID   *string    `json:"sharedWithId"`
	Permissions    []string   `json:"permissions"`
	Password       string     `json:"password"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	MaxAccessCount int        `json:"maxAccessCount"`
}

// V1SharedFileResponse is the response to a public link access
type V1SharedFileResponse struct {
	File        V1FileResponse      `json:"file"`
	Permissions []domain.Permission `json:"permissions"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	DownloadURL string              `json:"downloadUrl,omitempty"`
}

// ShareFileV1 grants access to a file
func (h *HandlerV1) ShareFileV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}

	var body V1ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpapi.BadRequest(w, "invalid body: "+err.Error())
		return
	}
	shareType, err := domain.ParseShareType(body.ShareType)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "invalid share", err)
		return
	}
	perms, err := domain.ParsePermissions(body.Permissions)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "invalid share", err)
		return
	}

	share, err := h.fileService.ShareFile(r.Context(), domain.ShareRequest{
		FileID:         fileID,
		SharedWithID:   body.SharedWithID,
		ShareType:      shareType,
		Permissions:    perms,
		Password:       body.Password,
		ExpiresAt:      body.ExpiresAt,
		MaxAccessCount: body.MaxAccessCount,
	}, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error sharing file", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusCreated, shareResponse(share))
}

// RevokeShareV1 deactivates a grant
func (h *HandlerV1) RevokeShareV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}
	shareID, ok := uuidParam(w, r, "shareID")
	if !ok {
		return
	}

	if err := h.fileService.RevokeShare(r.Context(), fileID, shareID, requester(r)); err != nil {
		httpapi.WriteDomainError(w, h.logger, "error revoking share", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AccessSharedLinkV1 resolves a public link, callers may be anonymous
func (h *HandlerV1) AccessSharedLinkV1(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(chi.URLParam(r, "token"))
	if token == "" {
		httpapi.BadRequest(w, "token is required")
		return
	}

	password := r.Header.Get(HeaderSharePassword)
	if password == "" {
		password = r.URL.Query().Get("password")
	}

	var accessedBy *string
	if identity, ok := httpapi.IdentityFrom(r.Context()); ok {
		accessedBy = &identity.UserID
	}

	shared, err := h.fileService.AccessSharedLink(r.Context(), token, password, accessedBy)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error accessing shared link", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, V1SharedFileResponse{
		File:        h.fileResponse(&shared.File),
		Permissions: shared.Share.Permissions,
		ExpiresAt:   shared.Share.ExpiresAt,
		DownloadURL: shared.DownloadURL,
	})
}
