package file

import (
	"encoding/json"
	"file-service/internal/adapters/handlers/http/httpapi"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// V1AddTagsRequest is the body of an add tags request
type V1AddTagsRequest struct {
	Tags []string `json:"tags"`
}

// V1TagsResponse lists the tags of a file
type V1TagsResponse struct {
	Tags []V1TagResponse `json:"tags"`
}

// AddTagsV1 attaches tags to a file and returns every tag it now carries
func (h *HandlerV1) AddTagsV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}

	var body V1AddTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpapi.BadRequest(w, "invalid body: "+err.Error())
		return
	}
	if len(body.Tags) == 0 {
		httpapi.BadRequest(w, "tags are required")
		return
	}

	tags, err := h.fileService.AddTags(r.Context(), fileID, body.Tags, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error adding tags", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusOK, V1TagsResponse{Tags: tagResponses(tags)})
}

// RemoveTagV1 detaches a tag from a file
func (h *HandlerV1) RemoveTagV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}
	tag, err := url.PathUnescape(chi.URLParam(r, "tag"))
	if err != nil || tag == "" {
		httpapi.BadRequest(w, "invalid tag")
		return
	}

	if err := h.fileService.RemoveTag(r.Context(), fileID, tag, requester(r)); err != nil {
		httpapi.WriteDomainError(w, h.logger, "error removing tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
