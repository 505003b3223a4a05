package tag

import (
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/domain"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// V1TagResponse is a catalogue entry
type V1TagResponse struct {
	Name      string `json:"name"`
	FileCount int    `json:"fileCount"`
}

type V1ListTagsResponse struct {
	Tags       []V1TagResponse `json:"tags"`
	NextMarker *string         `json:"nextMarker,omitempty"`
}

// ListTagsV1 pages through the requester's tags, limit is optional
func (h *HandlerV1) ListTagsV1(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpapi.IdentityFrom(r.Context())

	limitInt := 0
	if limit := r.URL.Query().Get("limit"); limit != "" {
		var err error
		limitInt, err = strconv.Atoi(limit)
		if err != nil {
			httpapi.BadRequest(w, "limit must be an integer")
			return
		}
		if limitInt <= 0 {
			httpapi.BadRequest(w, "limit must be greater than zero")
			return
		}
	}

	var markerPtr *string
	if marker := r.URL.Query().Get("marker"); marker != "" {
		markerPtr = &marker
	}
	tags, nextMarker, err := h.tagService.ListTags(r.Context(), identity, limitInt, markerPtr)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error listing tags", err)
		return
	}

	resp := V1ListTagsResponse{
		Tags:       make([]V1TagResponse, 0, len(tags)),
		NextMarker: nextMarker,
	}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, tagResponse(t))
	}
	httpapi.WriteJSON(w, h.logger, http.StatusOK, resp)
}

// GetTagV1 returns one catalogue entry
func (h *HandlerV1) GetTagV1(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpapi.IdentityFrom(r.Context())

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		httpapi.BadRequest(w, "invalid tag name")
		return
	}

	summary, err := h.tagService.GetTagByName(r.Context(), identity, name)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error getting tag", err)
		return
	}
	httpapi.WriteJSON(w, h.logger, http.StatusOK, tagResponse(*summary))
}

func tagResponse(t domain.TagSummary) V1TagResponse {
	return V1TagResponse{Name: t.Name, FileCount: t.FileCount}
}
