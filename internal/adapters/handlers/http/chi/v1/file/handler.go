package file

import (
	"file-service/internal/adapters/handlers/http/httpapi"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Options configures HandlerV1
type Options struct {
	MaxFileSize      int64
	MaxFilesPerBatch int
	// DefaultURLTTL is reported when a signed url request names no expiry
	DefaultURLTTL time.Duration
	// PublicBaseURL, when set, is used to build direct object urls
	PublicBaseURL string
}

// HandlerV1 is the handler for v1 files routes
type HandlerV1 struct {
	fileService port.FileService
	logger      *slog.Logger
	opts        Options
}

// NewFileHandlerV1 creates HandlerV1
func NewFileHandlerV1(service port.FileService, logger *slog.Logger, opts Options) *HandlerV1 {
	return &HandlerV1{
		fileService: service,
		logger:      logger,
		opts:        opts,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.With(httpapi.OptionalIdentity).Get("/shared/{token}", h.AccessSharedLinkV1)

	router.Group(func(r chi.Router) {
		r.Use(httpapi.RequireIdentity)

		r.Get("/", h.SearchFilesV1)
		r.Post("/upload", h.UploadFileV1)
		r.Post("/upload/multiple", h.UploadFilesV1)
		r.Get("/{fileID}", h.GetFileV1)
		r.Delete("/{fileID}", h.DeleteFileV1)
		r.Get("/{fileID}/download", h.DownloadFileV1)
		r.Post("/{fileID}/signed-url", h.GetSignedURLV1)
		r.Post("/{fileID}/share", h.ShareFileV1)
		r.Delete("/{fileID}/shares/{shareID}", h.RevokeShareV1)
		r.Post("/{fileID}/tags", h.AddTagsV1)
		r.Delete("/{fileID}/tags/{tag}", h.RemoveTagV1)
		r.Get("/{fileID}/versions", h.ListVersionsV1)
		r.Post("/{fileID}/versions", h.CreateVersionV1)
		r.Post("/{fileID}/versions/{number}/restore", h.RestoreVersionV1)
		r.Post("/{fileID}/transform", h.TransformImageV1)
	})

	return router
}

// requester returns the identity set by RequireIdentity
func requester(r *http.Request) domain.Identity {
	identity, _ := httpapi.IdentityFrom(r.Context())
	return identity
}

// uuidParam parses a uuid path parameter, answering 400 when it is malformed
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		httpapi.BadRequest(w, name+" is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httpapi.BadRequest(w, "invalid "+name+": "+err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// splitList flattens repeated and comma separated values
func splitList(values []string) []string {
	var out []string
	for _, raw := range values {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
