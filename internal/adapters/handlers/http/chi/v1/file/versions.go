package file

import (
	"context"
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/domain"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// V1VersionsResponse lists the versions of a file
type V1VersionsResponse struct {
	Versions []V1VersionResponse `json:"versions"`
}

// ListVersionsV1 lists the versions of a file, newest first
func (h *HandlerV1) ListVersionsV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}

	versions, err := h.fileService.ListVersions(r.Context(), fileID, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error listing versions", err)
		return
	}

	resp := V1VersionsResponse{Versions: make([]V1VersionResponse, 0, len(versions))}
	for _, v := range versions {
		resp.Versions = append(resp.Versions, versionResponse(v))
	}
	httpapi.WriteJSON(w, h.logger, http.StatusOK, resp)
}

// CreateVersionV1 stores a multipart upload as the new current version
func (h *HandlerV1) CreateVersionV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}
	if !h.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["file"]
	if len(parts) == 0 {
		httpapi.BadRequest(w, "file field is required")
		return
	}

	var upload domain.UploadInput
	if err := h.readPart(parts[0], &upload); err != nil {
		httpapi.WriteDomainError(w, h.logger, "error reading upload", err)
		return
	}

	in := domain.VersionInput{
		FileID:     fileID,
		Data:       upload.Data,
		UploadedBy: requester(r),
	}
	if comment := formValue(r.MultipartForm, "comment"); comment != "" {
		in.Comment = &comment
	}

	version, err := h.fileService.CreateVersion(context.WithoutCancel(r.Context()), in)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error creating version", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusCreated, versionResponse(*version))
}

// RestoreVersionV1 makes an older version current again
func (h *HandlerV1) RestoreVersionV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		httpapi.BadRequest(w, "version number must be a positive integer")
		return
	}

	version, err := h.fileService.RestoreVersion(r.Context(), fileID, number, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error restoring version", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, versionResponse(*version))
}
