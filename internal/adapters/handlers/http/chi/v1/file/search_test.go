package file_test

import (
	"encoding/json"
	file3 "file-service/internal/adapters/handlers/http/chi/v1/file"
	"file-service/internal/core/domain"
	"file-service/internal/core/service/file"
	http2 "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSearchFilesV1(t *testing.T) {

	t.Run("success - query parameters are parsed", func(t *testing.T) {
		// Arrange
		record := readyRecord()
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		mockService := file.NewMockFileService()
		mockService.On("SearchFiles", mock.Anything, mock.MatchedBy(func(opts domain.SearchOptions) bool {
			return opts.OwnerOrSharedWith != nil && opts.OwnerOrSharedWith.UserID == "user-1" &&
				opts.Query == "lineup" &&
				opts.Category == domain.FileCategoryTeamPhoto &&
				opts.MimeTypePrefix == "image/" &&
				assert.ObjectsAreEqual([]string{"home", "playoffs"}, opts.Tags) &&
				opts.CreatedFrom != nil && opts.CreatedFrom.Equal(from) &&
				opts.MinSize == 100 &&
				opts.SortBy == domain.SortByName && !opts.SortDesc &&
				opts.Limit == 10 && opts.Offset == 20
		})).Return(&domain.SearchResult{Files: []domain.FileRecord{*record}, Total: 21, Limit: 10, Offset: 20}, nil)

		h := newRouter(mockService)
		w := httptest.NewRecorder()
		target := "/api/v1/files?q=lineup&category=team_photo&mimeType=image/&tags=home,playoffs" +
			"&createdFrom=2026-01-01T00:00:00Z&minSize=100&sortBy=name&sortOrder=asc&limit=10&offset=20"

		// Act
		h.ServeHTTP(w, newRequest(http2.MethodGet, target, nil))

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		var response file3.V1SearchFilesResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, 21, response.Total)
		assert.Equal(t, 10, response.Limit)
		assert.Equal(t, 20, response.Offset)
		require.Len(t, response.Files, 1)
		assert.Equal(t, record.ID, response.Files[0].ID)
		mockService.AssertExpectations(t)
	})

	t.Run("success - admins are not restricted", func(t *testing.T) {
		// Arrange
		mockService := file.NewMockFileService()
		mockService.On("SearchFiles", mock.Anything, mock.MatchedBy(func(opts domain.SearchOptions) bool {
			return opts.OwnerOrSharedWith == nil
		})).Return(&domain.SearchResult{Limit: 20}, nil)

		h := newRouter(mockService)
		w := httptest.NewRecorder()
		req := newRequest(http2.MethodGet, "/api/v1/files", nil)
		req.Header.Set("x-user-roles", "coach,admin")

		// Act
		h.ServeHTTP(w, req)

		// Assert
		assert.Equal(t, http2.StatusOK, w.Code)
		assert.JSONEq(t, `{"files":[],"total":0,"limit":20,"offset":0}`, w.Body.String())
		mockService.AssertExpectations(t)
	})

	for _, query := range []string{
		"category=memes",
		"status=archived",
		"createdTo=yesterday",
		"limit=-1",
		"sortBy=owner",
		"sortOrder=sideways",
	} {
		t.Run("error - invalid "+query, func(t *testing.T) {
			// Arrange
			mockService := file.NewMockFileService()
			h := newRouter(mockService)
			w := httptest.NewRecorder()

			// Act
			h.ServeHTTP(w, newRequest(http2.MethodGet, "/api/v1/files?"+query, nil))

			// Assert
			assert.Equal(t, http2.StatusBadRequest, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
