package postgres

import (
	"context"
	"database/sql"
	"errors"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const versionColumns = `id, file_id, version_number, storage_key, size_bytes, content_hash, uploaded_by,
	comment, metadata, is_current, created_at, restored_at, restored_by`

type sqlVersionRepository struct {
	db SQLQuerier
}

// NewSqlVersionRepository creates sqlVersionRepository that implements port.VersionRepository
func NewSqlVersionRepository(db SQLQuerier) port.VersionRepository {
	return &sqlVersionRepository{db: db}
}

// LockFile serializes version writers of one file until the transaction ends.
// The row is checked after the lock is held, so a delete committed in between is seen.
func (s *sqlVersionRepository) LockFile(ctx context.Context, fileID uuid.UUID) error {
	return s.checkVersionable(ctx, `SELECT status, deleted_at FROM file_records WHERE id = $1 FOR UPDATE`, fileID)
}

// ReserveNumber hands out the next version number of a ready file.
// Numbers are never handed out twice, a failed writer leaves a gap.
func (s *sqlVersionRepository) ReserveNumber(ctx context.Context, fileID uuid.UUID) (int, error) {
	query := `UPDATE file_records f
              SET version_seq = GREATEST(f.version_seq,
                      (SELECT COALESCE(MAX(v.version_number), 0) FROM file_versions v WHERE v.file_id = f.id)) + 1
              WHERE f.id = $1 AND f.status = $2 AND f.deleted_at IS NULL
              RETURNING f.version_seq`

	var n int
	err := s.db.QueryRowContext(ctx, query, fileID, domain.FileStatusReady).Scan(&n)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, persistenceErr("error reserving version number", err)
	}
	if err := s.checkVersionable(ctx, `SELECT status, deleted_at FROM file_records WHERE id = $1`, fileID); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%w: no version number reserved", domain.ErrVersionConflict)
}

func (s *sqlVersionRepository) checkVersionable(ctx context.Context, query string, fileID uuid.UUID) error {
	var (
		status    domain.FileStatus
		deletedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, fileID).Scan(&status, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrFileNotFound
		}
		return persistenceErr("error locking file record", err)
	}
	if deletedAt.Valid || status == domain.FileStatusDeleted {
		return domain.ErrFileNotFound
	}
	if status != domain.FileStatusReady {
		return fmt.Errorf("%w: file is %s", domain.ErrFileNotReady, status)
	}
	return nil
}

// ClearCurrent unsets the current flag of the file's versions
func (s *sqlVersionRepository) ClearCurrent(ctx context.Context, fileID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE file_versions SET is_current = FALSE WHERE file_id = $1 AND is_current`, fileID)
	if err != nil {
		return persistenceErr("error clearing current version", err)
	}
	return nil
}

// Create inserts a version
func (s *sqlVersionRepository) Create(ctx context.Context, version *domain.FileVersion) error {
	metadata, err := marshalMetadata(version.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO file_versions (id, file_id, version_number, storage_key, size_bytes, content_hash,
                  uploaded_by, comment, metadata, is_current)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              RETURNING created_at`

	err = s.db.QueryRowContext(ctx, query,
		version.ID, version.FileID, version.VersionNumber, version.StorageKey, version.SizeBytes,
		version.ContentHash, version.UploadedBy, version.Comment, metadata, version.IsCurrent,
	).Scan(&version.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolationConstraint(err); ok {
			return fmt.Errorf("%w: %s", domain.ErrVersionConflict, constraint)
		}
		return persistenceErr("error inserting file version", err)
	}
	return nil
}

// ListByFileID lists versions, newest first
func (s *sqlVersionRepository) ListByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.FileVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM file_versions WHERE file_id = $1 ORDER BY version_number DESC`

	rows, err := s.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, persistenceErr("error querying file versions", err)
	}
	defer rows.Close()

	var versions []domain.FileVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning file version: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file versions: %w", err)
	}
	return versions, nil
}

// FindByNumber finds one version of a file
func (s *sqlVersionRepository) FindByNumber(ctx context.Context, fileID uuid.UUID, versionNumber int) (*domain.FileVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM file_versions WHERE file_id = $1 AND version_number = $2`
	return s.findOne(ctx, query, fileID, versionNumber)
}

// FindCurrent finds the current version of a file
func (s *sqlVersionRepository) FindCurrent(ctx context.Context, fileID uuid.UUID) (*domain.FileVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM file_versions WHERE file_id = $1 AND is_current`
	return s.findOne(ctx, query, fileID)
}

func (s *sqlVersionRepository) findOne(ctx context.Context, query string, args ...any) (*domain.FileVersion, error) {
	v, err := scanVersion(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVersionNotFound
		}
		return nil, persistenceErr("error finding file version", err)
	}
	return v, nil
}

// MarkRestored makes the version current and records who restored it
func (s *sqlVersionRepository) MarkRestored(ctx context.Context, id uuid.UUID, restoredBy string, at time.Time) error {
	query := `UPDATE file_versions SET is_current = TRUE, restored_at = $1, restored_by = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, at, restoredBy, id)
	if err != nil {
		if constraint, ok := uniqueViolationConstraint(err); ok {
			return fmt.Errorf("%w: %s", domain.ErrVersionConflict, constraint)
		}
		return persistenceErr("error restoring file version", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrVersionNotFound
	}
	return nil
}

func scanVersion(row rowScanner) (*domain.FileVersion, error) {
	var (
		v                   domain.FileVersion
		comment, restoredBy sql.NullString
		restoredAt          sql.NullTime
		metadata            []byte
	)

	err := row.Scan(
		&v.ID, &v.FileID, &v.VersionNumber, &v.StorageKey, &v.SizeBytes, &v.ContentHash, &v.UploadedBy,
		&comment, &metadata, &v.IsCurrent, &v.CreatedAt, &restoredAt, &restoredBy,
	)
	if err != nil {
		return nil, err
	}

	v.Metadata, err = unmarshalMetadata(metadata)
	if err != nil {
		return nil, err
	}
	v.Comment = nullString(comment)
	v.RestoredBy = nullString(restoredBy)
	if restoredAt.Valid {
		v.RestoredAt = &restoredAt.Time
	}
	return &v, nil
}
