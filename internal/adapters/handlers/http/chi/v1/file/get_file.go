package file

import (
	"file-service/internal/adapters/handlers/http/httpapi"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
)

// GetFileV1 is the function that handles GetFile
func (h *HandlerV1) GetFileV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}

	record, err := h.fileService.GetFile(r.Context(), fileID, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error getting file", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, h.fileResponse(record))
}

// DownloadFileV1 streams the current content of a file as an attachment
func (h *HandlerV1) DownloadFileV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}

	record, obj, err := h.fileService.DownloadFile(r.Context(), fileID, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error downloading file", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Length > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Length, 10))
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": record.OriginalName}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("download interrupted", slog.String("file_id", fileID.String()), slog.Any("error", err))
	}
}

// DeleteFileV1 soft-deletes a file
func (h *HandlerV1) DeleteFileV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), fileID, requester(r)); err != nil {
		httpapi.WriteDomainError(w, h.logger, "error deleting file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
