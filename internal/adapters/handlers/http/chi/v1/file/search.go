package file

import (
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/domain"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RoleAdmin sees every file in searches
const RoleAdmin = "admin"

// V1SearchFilesResponse is a page of files
type V1SearchFilesResponse struct {
	Files  []V1FileResponse `json:"files"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// SearchFilesV1 lists the files visible to the requester
func (h *HandlerV1) SearchFilesV1(w http.ResponseWriter, r *http.Request) {
	identity := requester(r)

	opts, err := searchOptions(r.URL.Query())
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "invalid search", err)
		return
	}
	if !identity.HasRole(RoleAdmin) {
		opts.OwnerOrSharedWith = &identity
	}

	result, err := h.fileService.SearchFiles(r.Context(), opts)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error searching files", err)
		return
	}

	resp := V1SearchFilesResponse{
		Files:  make([]V1FileResponse, 0, len(result.Files)),
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	}
	for i := range result.Files {
		resp.Files = append(resp.Files, h.fileResponse(&result.Files[i]))
	}
	httpapi.WriteJSON(w, h.logger, http.StatusOK, resp)
}

func searchOptions(q url.Values) (domain.SearchOptions, error) {
	opts := domain.SearchOptions{
		Query:          strings.TrimSpace(q.Get("q")),
		OwnerID:        q.Get("ownerId"),
		OrganizationID: q.Get("organizationId"),
		TeamID:         q.Get("teamId"),
		MimeTypePrefix: strings.ToLower(q.Get("mimeType")),
	}

	if raw := q.Get("category"); raw != "" {
		category, err := domain.ParseFileCategory(raw)
		if err != nil {
			return opts, err
		}
		opts.Category = category
	}
	if raw := q.Get("status"); raw != "" {
		status := domain.FileStatus(strings.ToLower(raw))
		if !status.Valid() {
			return opts, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, raw)
		}
		opts.Status = status
	}
	opts.Tags = splitList(q["tags"])

	var err error
	if opts.CreatedFrom, err = timeParam(q, "createdFrom"); err != nil {
		return opts, err
	}
	if opts.CreatedTo, err = timeParam(q, "createdTo"); err != nil {
		return opts, err
	}
	if opts.MinSize, err = int64Param(q, "minSize"); err != nil {
		return opts, err
	}
	if opts.MaxSize, err = int64Param(q, "maxSize"); err != nil {
		return opts, err
	}
	limit, err := int64Param(q, "limit")
	if err != nil {
		return opts, err
	}
	offset, err := int64Param(q, "offset")
	if err != nil {
		return opts, err
	}
	opts.Limit, opts.Offset = int(limit), int(offset)

	if raw := q.Get("sortBy"); raw != "" {
		if opts.SortBy, err = domain.ParseSortField(raw); err != nil {
			return opts, err
		}
		opts.SortDesc = true
	}
	switch strings.ToLower(q.Get("sortOrder")) {
	case "":
	case "asc":
		if opts.SortBy == "" {
			opts.SortBy = domain.SortByCreatedAt
		}
		opts.SortDesc = false
	case "desc":
		if opts.SortBy == "" {
			opts.SortBy = domain.SortByCreatedAt
		}
		opts.SortDesc = true
	default:
		return opts, fmt.Errorf("%w: sortOrder must be asc or desc", domain.ErrValidation)
	}
	return opts, nil
}

func timeParam(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC3339 timestamp", domain.ErrValidation, key)
	}
	return &t, nil
}

func int64Param(q url.Values, key string) (int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non negative integer", domain.ErrValidation, key)
	}
	return v, nil
}
