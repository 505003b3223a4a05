package postgres

import (
	"context"
	"database/sql"
	"errors"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type sqlFileTagRepository struct {
	db SQLQuerier
}

// NewFileTagRepository creates sqlFileTagRepository that implements port.TagRepository
func NewFileTagRepository(db SQLQuerier) port.TagRepository {
	return &sqlFileTagRepository{db: db}
}

// AddMany attaches tags to a file in batch, existing pairs are skipped
func (s *sqlFileTagRepository) AddMany(ctx context.Context, fileID uuid.UUID, tags []string, addedBy string) (int, error) {
	tags = domain.NormalizeTags(tags)
	if len(tags) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(tags))
	args := make([]interface{}, 0, len(tags)*4)
	for i, tag := range tags {
		baseIdx := i * 4
		placeholders[i] = fmt.Sprintf("($%d, $%d, $%d, $%d)", baseIdx+1, baseIdx+2, baseIdx+3, baseIdx+4)
		args = append(args, uuid.New(), fileID, tag, addedBy)
	}

	query := fmt.Sprintf(
		"INSERT INTO file_tags (id, file_id, tag, added_by) VALUES %s ON CONFLICT (file_id, tag) DO NOTHING",
		strings.Join(placeholders, ", "),
	)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, persistenceErr("error inserting file tags", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}

// FindByFileID finds all tags of a file sorted by name
func (s *sqlFileTagRepository) FindByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.FileTag, error) {
	query := `SELECT id, file_id, tag, added_by, created_at FROM file_tags WHERE file_id = $1 ORDER BY tag ASC`

	rows, err := s.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, persistenceErr("error querying file tags", err)
	}
	defer rows.Close()

	fileTags := make([]domain.FileTag, 0)
	for rows.Next() {
		var t domain.FileTag
		if err := rows.Scan(&t.ID, &t.FileID, &t.Tag, &t.AddedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning file tag: %w", err)
		}
		fileTags = append(fileTags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file tags: %w", err)
	}

	return fileTags, nil
}

// Remove detaches one tag from a file
func (s *sqlFileTagRepository) Remove(ctx context.Context, fileID uuid.UUID, tag string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM file_tags WHERE file_id = $1 AND tag = $2`, fileID, domain.NormalizeTag(tag))
	if err != nil {
		return persistenceErr("error deleting file tag", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}

// ListDistinct lists the owner's tags with cursor-based pagination sorted by name
func (s *sqlFileTagRepository) ListDistinct(ctx context.Context, ownerID string, limit int, marker *string) ([]domain.TagSummary, *string, error) {
	if limit <= 0 {
		limit = 20 // default limit
	}
	if limit > 100 {
		limit = 100 // max limit
	}

	query := `SELECT t.tag, COUNT(*)
              FROM file_tags t
              JOIN file_records f ON f.id = t.file_id
              WHERE f.owner_id = $1 AND f.deleted_at IS NULL`
	args := []interface{}{ownerID}

	if marker != nil && *marker != "" {
		// Fetch tags after the marker
		args = append(args, domain.NormalizeTag(*marker))
		query += fmt.Sprintf(" AND t.tag > $%d", len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" GROUP BY t.tag ORDER BY t.tag ASC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, persistenceErr("error querying tags", err)
	}
	defer rows.Close()

	tags := make([]domain.TagSummary, 0, limit)
	for rows.Next() {
		var t domain.TagSummary
		if err := rows.Scan(&t.Name, &t.FileCount); err != nil {
			return nil, nil, fmt.Errorf("error scanning tag: %w", err)
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating tags: %w", err)
	}

	// Check if there are more results
	var nextMarker *string
	if len(tags) > limit {
		tags = tags[:limit]
		lastName := tags[len(tags)-1].Name
		nextMarker = &lastName
	}

	return tags, nextMarker, nil
}

// FindByName returns one tag of the owner's catalogue
func (s *sqlFileTagRepository) FindByName(ctx context.Context, ownerID, name string) (*domain.TagSummary, error) {
	query := `SELECT t.tag, COUNT(*)
              FROM file_tags t
              JOIN file_records f ON f.id = t.file_id
              WHERE f.owner_id = $1 AND f.deleted_at IS NULL AND t.tag = $2
              GROUP BY t.tag`

	var t domain.TagSummary
	err := s.db.QueryRowContext(ctx, query, ownerID, domain.NormalizeTag(name)).Scan(&t.Name, &t.FileCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTagNotFound
		}
		return nil, persistenceErr("error finding tag", err)
	}
	return &t, nil
}
