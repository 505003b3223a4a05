package file_test

import (
	"bytes"
	"file-service/internal/adapters/handlers/http/chi"
	file3 "file-service/internal/adapters/handlers/http/chi/v1/file"
	"file-service/internal/core/domain"
	"file-service/internal/core/service/file"
	"io"
	"log/slog"
	"mime/multipart"
	http2 "net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	user          = domain.Identity{UserID: "user-1", OrganizationID: "org-1", TeamIDs: []string{"team-1"}}
	handlerOpts   = file3.Options{
		MaxFileSize:      1 << 20,
		MaxFilesPerBatch: 3,
		DefaultURLTTL:    15 * time.Minute,
	}
)

func newRouter(svc *file.MockFileService, opts ...func(*file3.Options)) http2.Handler {
	o := handlerOpts
	for _, opt := range opts {
		opt(&o)
	}
	handler := file3.NewFileHandlerV1(svc, discardLogger, o)
	return chi.NewRouter(discardLogger, nil, nil, nil, handler, chi.Options{})
}

func newRequest(method, target string, body io.Reader) *http2.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("x-user-id", user.UserID)
	req.Header.Set("x-organization-id", user.OrganizationID)
	req.Header.Set("x-team-ids", "team-1")
	return req
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http2.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := newRequest(http2.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func readyRecord() *domain.FileRecord {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	org := "org-1"
	return &domain.FileRecord{
		ID:           uuid.New(),
		OwnerID:      user.UserID,
		OriginalName: "lineup.png",
		StorageKey:   "org-1/user-1/team_photo/1700000000000-abcd-lineup.png",
		MimeType:     "image/png",
		SizeBytes:    2048,
		Status:       domain.FileStatusReady,
		Category:     domain.FileCategoryTeamPhoto,
		ScanStatus:   domain.ScanStatusClean,
		Metadata: domain.Metadata{
			domain.MetaThumbnailKey: domain.String("org-1/user-1/team_photo/1700000000000-abcd-lineup_thumbnail.webp"),
			domain.MetaWidth:        domain.Int(640),
		},
		OrganizationID: &org,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
