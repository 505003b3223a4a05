package postgres_test

import (
	"context"
	"file-service/internal/adapters/repository/postgres"
	"file-service/internal/core/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlFileRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()
	repo := postgres.NewSqlFileRepository(dbConnection)
	shareRepo := postgres.NewSqlShareRepository(dbConnection)
	tagRepo := postgres.NewFileTagRepository(dbConnection)

	t.Run("Create - Success", func(t *testing.T) {
		// Arrange
		truncate()
		record := newRecord("user-1")

		// Act
		err := repo.Create(ctx, record)

		// Assert
		require.NoError(t, err)
		found, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.StorageKey, found.StorageKey)
		assert.Equal(t, domain.FileStatusPending, found.Status)
		pages, ok := found.Metadata.Int("pages")
		assert.True(t, ok)
		assert.Equal(t, int64(3), pages)
		assert.False(t, found.CreatedAt.IsZero())
	})

	t.Run("Create - Duplicate storage key", func(t *testing.T) {
		// Arrange
		truncate()
		first := newRecord("user-1")
		require.NoError(t, repo.Create(ctx, first))
		second := newRecord("user-1")
		second.StorageKey = first.StorageKey

		// Act
		err := repo.Create(ctx, second)

		// Assert
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("FindByID - Not Found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		file, err := repo.FindByID(ctx, uuid.New())

		// Assert
		require.Nil(t, file)
		require.ErrorIs(t, err, domain.ErrFileNotFound)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UpdateStatus - Follows the state machine", func(t *testing.T) {
		// Arrange
		truncate()
		record := newRecord("user-1")
		require.NoError(t, repo.Create(ctx, record))

		// Act
		errUploaded := repo.UpdateStatus(ctx, record.ID, domain.FileStatusPending, domain.FileStatusUploaded)
		errStale := repo.UpdateStatus(ctx, record.ID, domain.FileStatusPending, domain.FileStatusUploaded)
		errIllegal := repo.UpdateStatus(ctx, record.ID, domain.FileStatusUploaded, domain.FileStatusDeleted)

		// Assert
		require.NoError(t, errUploaded)
		require.ErrorIs(t, errStale, domain.ErrInvalidTransition)
		require.ErrorIs(t, errIllegal, domain.ErrInvalidTransition)
		found, _ := repo.FindByID(ctx, record.ID)
		assert.Equal(t, domain.FileStatusUploaded, found.Status)
	})

	t.Run("UpdateStatus - Not Found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		err := repo.UpdateStatus(ctx, uuid.New(), domain.FileStatusPending, domain.FileStatusUploaded)

		// Assert
		require.ErrorIs(t, err, domain.ErrFileNotFound)
	})

	t.Run("Update - Persists scan fields and metadata", func(t *testing.T) {
		// Arrange
		truncate()
		record := newRecord("user-1")
		require.NoError(t, repo.Create(ctx, record))
		now := time.Now().UTC().Truncate(time.Second)
		verdict := "clean"
		record.ScanStatus = domain.ScanStatusClean
		record.ScanDate = &now
		record.ScanResult = &verdict
		record.Metadata.Set(domain.MetaThumbnailKey, domain.String("k_thumbnail.jpg"))

		// Act
		err := repo.Update(ctx, record)

		// Assert
		require.NoError(t, err)
		found, _ := repo.FindByID(ctx, record.ID)
		assert.Equal(t, domain.ScanStatusClean, found.ScanStatus)
		require.NotNil(t, found.ScanDate)
		assert.True(t, now.Equal(*found.ScanDate))
		thumb, _ := found.Metadata.String(domain.MetaThumbnailKey)
		assert.Equal(t, "k_thumbnail.jpg", thumb)
	})

	t.Run("Update - Leaves status untouched", func(t *testing.T) {
		// Arrange
		truncate()
		record := newRecord("user-1")
		require.NoError(t, repo.Create(ctx, record))
		record.Status = domain.FileStatusReady

		// Act
		err := repo.Update(ctx, record)

		// Assert
		require.NoError(t, err)
		found, _ := repo.FindByID(ctx, record.ID)
		assert.Equal(t, domain.FileStatusPending, found.Status)
	})

	t.Run("Update - Stale ready snapshot does not revive a deleted file", func(t *testing.T) {
		// Arrange
		truncate()
		record := newRecord("user-1")
		createReady(t, ctx, repo, record)
		snapshot := *record
		require.NoError(t, repo.MarkDeleted(ctx, record.ID, "user-2", time.Now()))
		snapshot.SizeBytes = 4096

		// Act
		err := repo.Update(ctx, &snapshot)

		// Assert
		require.ErrorIs(t, err, domain.ErrFileNotFound)
		found, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.FileStatusDeleted, found.Status)
		assert.True(t, found.IsDeleted())
		assert.Equal(t, int64(2048), found.SizeBytes)
	})

	t.Run("MarkDeleted - Soft delete keeps the row", func(t *testing.T) {
		// Arrange
		truncate()
		record := newRecord("user-1")
		createReady(t, ctx, repo, record)

		// Act
		err := repo.MarkDeleted(ctx, record.ID, "user-1", time.Now())

		// Assert
		require.NoError(t, err)
		found, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, found.IsDeleted())
		assert.Equal(t, domain.FileStatusDeleted, found.Status)
		require.NotNil(t, found.DeletedBy)
		assert.Equal(t, "user-1", *found.DeletedBy)
		files, total, err := repo.Search(ctx, domain.SearchOptions{OwnerID: "user-1"})
		require.NoError(t, err)
		assert.Empty(t, files)
		assert.Zero(t, total)
	})

	t.Run("MarkDeleted - Rejects non ready files", func(t *testing.T) {
		// Arrange
		truncate()
		record := newRecord("user-1")
		require.NoError(t, repo.Create(ctx, record))

		// Act
		err := repo.MarkDeleted(ctx, record.ID, "user-1", time.Now())

		// Assert
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("IncrementAccess - Counts every call", func(t *testing.T) {
		// Arrange
		truncate()
		record := newRecord("user-1")
		require.NoError(t, repo.Create(ctx, record))

		// Act
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.IncrementAccess(ctx, record.ID, time.Now()))
		}

		// Assert
		found, _ := repo.FindByID(ctx, record.ID)
		assert.Equal(t, int64(3), found.AccessCount)
		assert.NotNil(t, found.LastAccessedAt)
	})

	t.Run("Search - Filters and paginates", func(t *testing.T) {
		// Arrange
		truncate()
		var ids []uuid.UUID
		for i := 0; i < 5; i++ {
			r := newRecord("coach")
			r.OriginalName = "drill.png"
			r.MimeType = "image/png"
			r.Category = domain.FileCategoryTeamPhoto
			createReady(t, ctx, repo, r)
			ids = append(ids, r.ID)
		}
		other := newRecord("coach")
		createReady(t, ctx, repo, other)

		// Act
		page, total, err := repo.Search(ctx, domain.SearchOptions{
			OwnerID:        "coach",
			MimeTypePrefix: "image/",
			Limit:          2,
			Offset:         2,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, page, 2)
		for _, f := range page {
			assert.Contains(t, ids, f.ID)
		}
	})

	t.Run("Search - Free text, tags and size", func(t *testing.T) {
		// Arrange
		truncate()
		match := newRecord("coach")
		match.OriginalName = "Playbook 2024.pdf"
		match.SizeBytes = 5000
		createReady(t, ctx, repo, match)
		_, err := tagRepo.AddMany(ctx, match.ID, []string{"Tactics"}, "coach")
		require.NoError(t, err)
		miss := newRecord("coach")
		createReady(t, ctx, repo, miss)

		// Act
		files, total, err := repo.Search(ctx, domain.SearchOptions{
			OwnerID: "coach",
			Query:   "playbook",
			Tags:    []string{"tactics"},
			MinSize: 4000,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, files, 1)
		assert.Equal(t, match.ID, files[0].ID)
	})

	t.Run("Search - Owner or shared with", func(t *testing.T) {
		// Arrange
		truncate()
		own := newRecord("player")
		createReady(t, ctx, repo, own)
		team := "team-a"
		sharedToTeam := newRecord("coach")
		sharedToTeam.TeamID = &team
		createReady(t, ctx, repo, sharedToTeam)
		otherTeam := newRecord("coach")
		createReady(t, ctx, repo, otherTeam)
		_, err := shareRepo.Upsert(ctx, &domain.ShareGrant{
			ID: uuid.New(), FileID: otherTeam.ID, SharedByID: "coach", SharedWithID: &team,
			ShareType: domain.ShareTypeTeam, Permissions: []domain.Permission{domain.PermissionView},
		})
		require.NoError(t, err)
		_, err = shareRepo.Upsert(ctx, &domain.ShareGrant{
			ID: uuid.New(), FileID: sharedToTeam.ID, SharedByID: "coach", SharedWithID: &team,
			ShareType: domain.ShareTypeTeam, Permissions: []domain.Permission{domain.PermissionView},
		})
		require.NoError(t, err)
		private := newRecord("coach")
		createReady(t, ctx, repo, private)

		// Act
		files, total, err := repo.Search(ctx, domain.SearchOptions{
			OwnerOrSharedWith: &domain.Identity{UserID: "player", TeamIDs: []string{"team-a"}},
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		var got []uuid.UUID
		for _, f := range files {
			got = append(got, f.ID)
		}
		assert.ElementsMatch(t, []uuid.UUID{own.ID, sharedToTeam.ID}, got)
	})

	t.Run("FindDeletedBefore and Purge", func(t *testing.T) {
		// Arrange
		truncate()
		old := newRecord("user-1")
		createReady(t, ctx, repo, old)
		require.NoError(t, repo.MarkDeleted(ctx, old.ID, "user-1", time.Now().Add(-48*time.Hour)))
		recent := newRecord("user-1")
		createReady(t, ctx, repo, recent)
		require.NoError(t, repo.MarkDeleted(ctx, recent.ID, "user-1", time.Now()))
		_, err := tagRepo.AddMany(ctx, old.ID, []string{"archive"}, "user-1")
		require.NoError(t, err)

		// Act
		expired, err := repo.FindDeletedBefore(ctx, time.Now().Add(-24*time.Hour), 10)
		require.NoError(t, err)
		purgeErr := repo.Purge(ctx, old.ID)

		// Assert
		require.Len(t, expired, 1)
		assert.Equal(t, old.ID, expired[0].ID)
		require.NoError(t, purgeErr)
		_, err = repo.FindByID(ctx, old.ID)
		require.ErrorIs(t, err, domain.ErrFileNotFound)
		tags, err := tagRepo.FindByFileID(ctx, old.ID)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}
