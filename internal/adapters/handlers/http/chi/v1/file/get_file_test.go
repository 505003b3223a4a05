package file_test

import (
	"encoding/json"
	"errors"
	file3 "file-service/internal/adapters/handlers/http/chi/v1/file"
	"file-service/internal/core/domain"
	"file-service/internal/core/service/file"
	"io"
	http2 "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetFileV1(t *testing.T) {

	t.Run("success - detailed view", func(t *testing.T) {
		// Arrange
		record := readyRecord()
		mockService := file.NewMockFileService()
		mockService.On("GetFile", mock.Anything, record.ID, user).Return(record, nil)

		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(http2.MethodGet, "/api/v1/files/"+record.ID.String(), nil))

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		var response file3.V1FileResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, record.ID, response.ID)
		assert.Equal(t, "user-1", response.OwnerID)
		assert.Equal(t, domain.ScanStatusClean, response.ScanStatus)
		width, ok := response.Metadata.Int(domain.MetaWidth)
		assert.True(t, ok)
		assert.Equal(t, int64(640), width)
		mockService.AssertExpectations(t)
	})

	errorCases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domain.ErrFileNotFound, http2.StatusNotFound},
		{"access denied", domain.ErrAccessDenied, http2.StatusForbidden},
		{"internal error", errors.New("database connection lost"), http2.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run("error - "+tc.name, func(t *testing.T) {
			// Arrange
			fileID := uuid.New()
			mockService := file.NewMockFileService()
			mockService.On("GetFile", mock.Anything, fileID, user).Return((*domain.FileRecord)(nil), tc.err)

			h := newRouter(mockService)
			w := httptest.NewRecorder()

			// Act
			h.ServeHTTP(w, newRequest(http2.MethodGet, "/api/v1/files/"+fileID.String(), nil))

			// Assert
			assert.Equal(t, tc.status, w.Code)
			assert.NotContains(t, w.Body.String(), "database connection lost")
			mockService.AssertExpectations(t)
		})
	}

	t.Run("error - invalid file ID format", func(t *testing.T) {
		// Arrange
		mockService := file.NewMockFileService()
		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(http2.MethodGet, "/api/v1/files/invalid-uuid", nil))

		// Assert
		assert.Equal(t, http2.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestDownloadFileV1(t *testing.T) {

	t.Run("success - streams an attachment", func(t *testing.T) {
		// Arrange
		record := readyRecord()
		record.OriginalName = "game plan.pdf"
		mockService := file.NewMockFileService()
		mockService.On("DownloadFile", mock.Anything, record.ID, user).Return(record, &domain.DownloadResult{
			Body:        io.NopCloser(strings.NewReader("%PDF-1.7")),
			ContentType: "application/pdf",
			Length:      8,
		}, nil)

		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(http2.MethodGet, "/api/v1/files/"+record.ID.String()+"/download", nil))

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "8", w.Header().Get("Content-Length"))
		assert.Equal(t, `attachment; filename="game plan.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.7", w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("error - not ready", func(t *testing.T) {
		// Arrange
		fileID := uuid.New()
		mockService := file.NewMockFileService()
		mockService.On("DownloadFile", mock.Anything, fileID, user).
			Return((*domain.FileRecord)(nil), (*domain.DownloadResult)(nil), domain.ErrFileNotReady)

		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(http2.MethodGet, "/api/v1/files/"+fileID.String()+"/download", nil))

		// Assert
		assert.Equal(t, http2.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "FILE_NOT_READY")
		mockService.AssertExpectations(t)
	})
}

func TestDeleteFileV1(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		// Arrange
		fileID := uuid.New()
		mockService := file.NewMockFileService()
		mockService.On("DeleteFile", mock.Anything, fileID, user).Return(nil)

		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(http2.MethodDelete, "/api/v1/files/"+fileID.String(), nil))

		// Assert
		assert.Equal(t, http2.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("error - forbidden", func(t *testing.T) {
		// Arrange
		fileID := uuid.New()
		mockService := file.NewMockFileService()
		mockService.On("DeleteFile", mock.Anything, fileID, user).Return(domain.ErrAccessDenied)

		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, newRequest(http2.MethodDelete, "/api/v1/files/"+fileID.String(), nil))

		// Assert
		assert.Equal(t, http2.StatusForbidden, w.Code)
		mockService.AssertExpectations(t)
	})
}
