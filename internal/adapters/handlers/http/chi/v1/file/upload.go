package file

import (
	"context"
	"encoding/json"
	"errors"
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/domain"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// multipartMemory is kept in memory while parsing a form, the rest spills to disk
const multipartMemory = 32 << 20

// V1UploadReportResponse is the response to a batch upload
type V1UploadReportResponse struct {
	Uploaded int                    `json:"uploaded"`
	Failed   int                    `json:"failed"`
	Files    []V1UploadResponse     `json:"files"`
	Errors   []domain.UploadFailure `json:"errors"`
}

// UploadFileV1 handles a single multipart upload
func (h *HandlerV1) UploadFileV1(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["file"]
	if len(parts) == 0 {
		httpapi.BadRequest(w, "file field is required")
		return
	}

	in, err := uploadInput(r.MultipartForm, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error reading upload form", err)
		return
	}
	if err := h.readPart(parts[0], &in); err != nil {
		httpapi.WriteDomainError(w, h.logger, "error reading upload", err)
		return
	}

	// the pipeline must settle the record even if the client goes away
	record, err := h.fileService.UploadFile(context.WithoutCancel(r.Context()), in)
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error uploading file", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusCreated, h.uploadResponse(record))
}

// UploadFilesV1 handles a batch upload, files are processed one by one and failures are reported per file
func (h *HandlerV1) UploadFilesV1(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["files"]
	switch {
	case len(parts) == 0:
		httpapi.BadRequest(w, "files field is required")
		return
	case h.opts.MaxFilesPerBatch > 0 && len(parts) > h.opts.MaxFilesPerBatch:
		httpapi.BadRequest(w, fmt.Sprintf("at most %d files per batch", h.opts.MaxFilesPerBatch))
		return
	}

	base, err := uploadInput(r.MultipartForm, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error reading upload form", err)
		return
	}

	inputs := make([]domain.UploadInput, 0, len(parts))
	for _, part := range parts {
		in := base
		in.Metadata = base.Metadata.Clone()
		if err := h.readPart(part, &in); err != nil {
			httpapi.WriteDomainError(w, h.logger, "error reading upload", err)
			return
		}
		inputs = append(inputs, in)
	}

	report := h.fileService.UploadFiles(context.WithoutCancel(r.Context()), inputs)

	resp := V1UploadReportResponse{
		Uploaded: report.Uploaded,
		Failed:   report.Failed,
		Files:    make([]V1UploadResponse, 0, len(report.Files)),
		Errors:   report.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []domain.UploadFailure{}
	}
	for i := range report.Files {
		resp.Files = append(resp.Files, h.uploadResponse(&report.Files[i]))
	}
	httpapi.WriteJSON(w, h.logger, http.StatusOK, resp)
}

func (h *HandlerV1) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpapi.WriteDomainError(w, h.logger, "upload too large", err)
			return false
		}
		httpapi.BadRequest(w, "invalid multipart form: "+err.Error())
		return false
	}
	return true
}

// readPart loads one part into in, reading at most one byte past the size limit
func (h *HandlerV1) readPart(part *multipart.FileHeader, in *domain.UploadInput) error {
	f, err := part.Open()
	if err != nil {
		return fmt.Errorf("%w: cannot open %s: %w", domain.ErrValidation, part.Filename, err)
	}
	defer f.Close()

	var body io.Reader = f
	if h.opts.MaxFileSize > 0 {
		body = io.LimitReader(f, h.opts.MaxFileSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: cannot read %s: %w", domain.ErrValidation, part.Filename, err)
	}

	in.OriginalName = part.Filename
	in.ContentType = part.Header.Get("Content-Type")
	in.Data = data
	return nil
}

// uploadInput reads the fields shared by every file of the form
func uploadInput(form *multipart.Form, identity domain.Identity) (domain.UploadInput, error) {
	in := domain.UploadInput{Owner: identity}

	category, err := domain.ParseFileCategory(formValue(form, "category"))
	if err != nil {
		return in, err
	}
	in.Category = category

	if v := formValue(form, "description"); v != "" {
		in.Description = &v
	}
	if v := formValue(form, "isPublic"); v != "" {
		isPublic, err := strconv.ParseBool(v)
		if err != nil {
			return in, fmt.Errorf("%w: isPublic must be a boolean", domain.ErrValidation)
		}
		in.IsPublic = isPublic
	}

	orgID := formValue(form, "organizationId")
	if orgID == "" {
		orgID = identity.OrganizationID
	}
	if orgID != "" {
		in.OrganizationID = &orgID
	}
	if v := formValue(form, "teamId"); v != "" {
		in.TeamID = &v
	}

	in.Tags = splitList(form.Value["tags"])

	if raw := formValue(form, "metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Metadata); err != nil {
			return in, fmt.Errorf("%w: metadata must be a flat JSON object: %w", domain.ErrValidation, err)
		}
	}
	return in, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}
