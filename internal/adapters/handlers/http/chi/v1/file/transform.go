package file

import (
	"context"
	"encoding/json"
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/domain"
	"fmt"
	"net/http"
	"strings"
)

// V1TransformRequest is the body of a transform request.
// Width and Height size resize and thumbnail operations and the crop rectangle.
type V1TransformRequest struct {
	Operation          string  `json:"operation"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	Fit                string  `json:"fit"`
	WithoutEnlargement bool    `json:"withoutEnlargement"`
	Left               float64 `json:"left"`
	Top                float64 `json:"top"`
	Angle              int     `json:"angle"`
	Format             string  `json:"format"`
	Quality            int     `json:"quality"`
}

// TransformImageV1 edits an image and stores the result as a new version
func (h *HandlerV1) TransformImageV1(w http.ResponseWriter, r *http.Request) {
	fileID, ok := uuidParam(w, r, "fileID")
	if !ok {
		return
	}

	var body V1TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpapi.BadRequest(w, "invalid body: "+err.Error())
		return
	}
	req, err := body.toDomain()
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "invalid transform", err)
		return
	}

	version, err := h.fileService.TransformImage(context.WithoutCancel(r.Context()), fileID, req, requester(r))
	if err != nil {
		httpapi.WriteDomainError(w, h.logger, "error transforming image", err)
		return
	}

	httpapi.WriteJSON(w, h.logger, http.StatusCreated, versionResponse(*version))
}

func (b V1TransformRequest) toDomain() (domain.TransformRequest, error) {
	req := domain.TransformRequest{
		Operation: domain.TransformOperation(strings.ToLower(strings.TrimSpace(b.Operation))),
		Angle:     b.Angle,
		Quality:   b.Quality,
		Crop: domain.CropRect{
			Left:   b.Left,
			Top:    b.Top,
			Width:  float64(b.Width),
			Height: float64(b.Height),
		},
		Resize: domain.ResizeOptions{
			Width:              b.Width,
			Height:             b.Height,
			Fit:                domain.ResizeFit(strings.ToLower(b.Fit)),
			WithoutEnlargement: b.WithoutEnlargement,
			Quality:            b.Quality,
		},
	}
	if b.Format != "" {
		format, ok := domain.ParseImageFormat(b.Format)
		if !ok {
			return req, fmt.Errorf("%w: unsupported output format %q", domain.ErrValidation, b.Format)
		}
		req.Format = format
		req.Resize.Format = format
	}
	switch req.Resize.Fit {
	case "", domain.ResizeFitInside, domain.ResizeFitCover, domain.ResizeFitFill:
	default:
		return req, fmt.Errorf("%w: unknown fit %q", domain.ErrValidation, b.Fit)
	}
	if req.Operation == domain.TransformConvert && req.Format == "" {
		return req, fmt.Errorf("%w: convert needs a format", domain.ErrValidation)
	}
	return req, nil
}
