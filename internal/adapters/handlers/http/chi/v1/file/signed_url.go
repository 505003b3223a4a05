package file

import (
	"encoding/json"
	"errors"
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/domain"
	"io"
	"net/http"
	"time"
)

// V1SignedURLRequest asks for a signed url, expiresIn is in seconds
type V1SignedURLRequest struct {
	Action    string `json:"action"`
	ExpiresIn int    `json:"expiresIn"`
}

// V1SignedURLResponse is the response to a signed url request
type V1SignedURLResponse struct {
	URL       string                 `json:"url"`
	ExpiresIn int                    `json:"expiresIn"`
	Action    domain.SignedURLAction `json:"action"`
}

// GetSignedURLV1 issues a time limited url on the object store
func (h *HandlerV1) GetSignedURLV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}

	var req V1SignedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpapi.BadRequest(w, "invalid body: "+err.Error())
		return
	}
	if req.ExpiresIn < 0 {
		httpapi.BadRequest(w, "expiresIn must not be negative")
		return
	}
	action, err := domain.ParseSignedURLAction(req.Action)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "invalid signed url action", err)
		return
	}

	ttl := time.Duration(req.ExpiresIn) * time.Second
	if ttl == 0 {
		ttl = h.opts.DefaultURLTTL
	}

	url, err := h.fileService.GetSignedURL(r.Context(), fileID, requester(r), action, ttl)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error signing url", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, V1SignedURLResponse{
		URL:       url,
		ExpiresIn: int(ttl / time.Second),
		Action:    action,
	})
}
