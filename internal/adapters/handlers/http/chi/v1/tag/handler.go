package tag

import (
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/port"
	"log/slog"

	"github.com/go-chi/chi/v5"
)

// HandlerV1 is the handler for v1 tags routes
type HandlerV1 struct {
	tagService port.TagService
	logger     *slog.Logger
}

// NewTagHandlerV1 creates HandlerV1
func NewTagHandlerV1(service port.TagService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		tagService: service,
		logger:     logger,
	}
}

// Routes exposes routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(httpapi.RequireIdentity)

	router.Get("/", h.ListTagsV1)
	router.Get("/{name}", h.GetTagV1)

	return router
}
