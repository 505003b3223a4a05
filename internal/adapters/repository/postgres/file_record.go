package postgres

import (
	"context"
	"database/sql"
	"errors"
	"file-service/internal/core/domain"
	"file-service/internal/core/port"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const fileColumns = `f.id, f.owner_id, f.organization_id, f.team_id, f.original_name, f.storage_key,
	f.mime_type, f.size_bytes, f.status, f.category, f.description, f.metadata, f.content_hash,
	f.is_public, f.scan_status, f.scan_date, f.scan_result, f.created_at, f.updated_at,
	f.deleted_at, f.deleted_by, f.last_accessed_at, f.access_count`

type sqlFileRepository struct {
	db SQLQuerier
}

// NewSqlFileRepository creates sqlFileRepository that implements port.FileRepository
func NewSqlFileRepository(db SQLQuerier) port.FileRepository {
	return &sqlFileRepository{
		db: db,
	}
}

// Create inserts a new file record
func (s *sqlFileRepository) Create(ctx context.Context, record *domain.FileRecord) error {
	metadata, err := marshalMetadata(record.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO file_records (id, owner_id, organization_id, team_id, original_name, storage_key,
                  mime_type, size_bytes, status, category, description, metadata, content_hash, is_public, scan_status)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
              RETURNING created_at, updated_at`

	err = s.db.QueryRowContext(ctx, query,
		record.ID, record.OwnerID, record.OrganizationID, record.TeamID, record.OriginalName, record.StorageKey,
		record.MimeType, record.SizeBytes, record.Status, record.Category, record.Description, metadata,
		record.ContentHash, record.IsPublic, record.ScanStatus,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if _, ok := uniqueViolationConstraint(err); ok {
			return fmt.Errorf("file record %s: %w", record.StorageKey, domain.ErrAlreadyExists)
		}
		return persistenceErr("error inserting file record", err)
	}
	return nil
}

// FindByID finds by id, soft-deleted records included
func (s *sqlFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FileRecord, error) {
	query := `SELECT ` + fileColumns + ` FROM file_records f WHERE f.id = $1`

	record, err := scanFileRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFileNotFound
		}
		return nil, persistenceErr("error finding file record", err)
	}
	return record, nil
}

// Update writes the mutable columns of a live record.
// Status is left alone, it only moves through UpdateStatus and MarkDeleted.
func (s *sqlFileRepository) Update(ctx context.Context, record *domain.FileRecord) error {
	metadata, err := marshalMetadata(record.Metadata)
	if err != nil {
		return err
	}

	query := `UPDATE file_records
              SET metadata = $1, scan_status = $2, scan_date = $3, scan_result = $4,
                  description = $5, is_public = $6, size_bytes = $7, content_hash = $8, updated_at = now()
              WHERE id = $9 AND deleted_at IS NULL
              RETURNING updated_at`

	err = s.db.QueryRowContext(ctx, query,
		metadata, record.ScanStatus, record.ScanDate, record.ScanResult,
		record.Description, record.IsPublic, record.SizeBytes, record.ContentHash, record.ID,
	).Scan(&record.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrFileNotFound
		}
		return persistenceErr("error updating file record", err)
	}
	return nil
}

// UpdateStatus moves the record from one status to the next, rejecting stale or illegal moves
func (s *sqlFileRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.FileStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}

	query := `UPDATE file_records
              SET status = $1, updated_at = now()
              WHERE id = $2 AND status = $3`

	result, err := s.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return persistenceErr("error updating file status", err)
	}
	return s.checkAffected(ctx, result, id, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to))
}

// MarkDeleted soft deletes a ready record
func (s *sqlFileRepository) MarkDeleted(ctx context.Context, id uuid.UUID, deletedBy string, at time.Time) error {
	query := `UPDATE file_records
              SET status = $1, deleted_at = $2, deleted_by = $3, updated_at = now()
              WHERE id = $4 AND status = $5 AND deleted_at IS NULL`

	result, err := s.db.ExecContext(ctx, query, domain.FileStatusDeleted, at, deletedBy, id, domain.FileStatusReady)
	if err != nil {
		return persistenceErr("error deleting file record", err)
	}
	return s.checkAffected(ctx, result, id, fmt.Errorf("%w: only ready files can be deleted", domain.ErrInvalidTransition))
}

// IncrementAccess bumps the access counter atomically
func (s *sqlFileRepository) IncrementAccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE file_records
              SET access_count = access_count + 1, last_accessed_at = $1
              WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return persistenceErr("error incrementing access count", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// Search lists non-deleted records matching opts and the total count
func (s *sqlFileRepository) Search(ctx context.Context, opts domain.SearchOptions) ([]domain.FileRecord, int, error) {
	opts.Normalize()
	listQuery, countQuery, args := buildSearchQuery(opts)

	var total int
	// the count query uses every filter arg but not limit/offset
	if err := s.db.QueryRowContext(ctx, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, persistenceErr("error counting files", err)
	}

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, persistenceErr("error querying files", err)
	}
	defer rows.Close()

	files := make([]domain.FileRecord, 0, opts.Limit)
	for rows.Next() {
		record, err := scanFileRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning file record: %w", err)
		}
		files = append(files, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating files: %w", err)
	}

	return files, total, nil
}

// FindDeletedBefore finds soft-deleted records older than before, oldest first
func (s *sqlFileRepository) FindDeletedBefore(ctx context.Context, before time.Time, limit int) ([]domain.FileRecord, error) {
	query := `SELECT ` + fileColumns + `
              FROM file_records f
              WHERE f.deleted_at IS NOT NULL AND f.deleted_at < $1
              ORDER BY f.deleted_at ASC
              LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, persistenceErr("error querying deleted files", err)
	}
	defer rows.Close()

	var files []domain.FileRecord
	for rows.Next() {
		record, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning file record: %w", err)
		}
		files = append(files, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}
	return files, nil
}

// Purge hard deletes the row, shares, versions and tags cascade
func (s *sqlFileRepository) Purge(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM file_records WHERE id = $1`, id)
	if err != nil {
		return persistenceErr("error purging file record", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// checkAffected maps a zero-row conditional update to not found or conflictErr
func (s *sqlFileRepository) checkAffected(ctx context.Context, result sql.Result, id uuid.UUID, conflictErr error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM file_records WHERE id = $1)`, id).Scan(&exists); err != nil {
		return persistenceErr("error checking file record", err)
	}
	if !exists {
		return domain.ErrFileNotFound
	}
	return conflictErr
}

var sortColumns = map[domain.SortField]string{
	domain.SortByCreatedAt: "f.created_at",
	domain.SortByName:      "f.original_name",
	domain.SortBySize:      "f.size_bytes",
	domain.SortByUpdatedAt: "f.updated_at",
}

// buildSearchQuery returns the page query, the count query and their args.
// The last two args are limit and offset, used by the page query only.
func buildSearchQuery(opts domain.SearchOptions) (string, string, []any) {
	conditions := []string{"f.deleted_at IS NULL"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if id := opts.OwnerOrSharedWith; id != nil {
		user := arg(id.UserID)
		targets := []string{fmt.Sprintf("(s.share_type = 'user' AND s.shared_with_id = %s)", user)}
		if id.OrganizationID != "" {
			targets = append(targets, fmt.Sprintf("(s.share_type = 'organization' AND s.shared_with_id = %s AND s.shared_with_id = f.organization_id)", arg(id.OrganizationID)))
		}
		if len(id.TeamIDs) > 0 {
			targets = append(targets, fmt.Sprintf("(s.share_type = 'team' AND s.shared_with_id = ANY(%s) AND s.shared_with_id = f.team_id)", arg(pq.Array(id.TeamIDs))))
		}
		conditions = append(conditions, fmt.Sprintf(`(f.owner_id = %s OR EXISTS (
			SELECT 1 FROM file_shares s
			WHERE s.file_id = f.id AND s.is_active
			  AND (s.expires_at IS NULL OR s.expires_at > now())
			  AND (s.max_access_count = 0 OR s.access_count < s.max_access_count)
			  AND (%s)))`, user, strings.Join(targets, " OR ")))
	}
	if opts.OwnerID != "" {
		conditions = append(conditions, "f.owner_id = "+arg(opts.OwnerID))
	}
	if opts.OrganizationID != "" {
		conditions = append(conditions, "f.organization_id = "+arg(opts.OrganizationID))
	}
	if opts.TeamID != "" {
		conditions = append(conditions, "f.team_id = "+arg(opts.TeamID))
	}
	if opts.Category != "" {
		conditions = append(conditions, "f.category = "+arg(opts.Category))
	}
	if opts.Status != "" {
		conditions = append(conditions, "f.status = "+arg(opts.Status))
	}
	if opts.MimeTypePrefix != "" {
		conditions = append(conditions, "f.mime_type LIKE "+arg(escapeLike(strings.ToLower(opts.MimeTypePrefix))+"%"))
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		conditions = append(conditions, fmt.Sprintf("(f.original_name ILIKE %s OR f.description ILIKE %s)", p, p))
	}
	if len(opts.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM file_tags t WHERE t.file_id = f.id AND t.tag = ANY(%s))", arg(pq.Array(opts.Tags))))
	}
	if opts.CreatedFrom != nil {
		conditions = append(conditions, "f.created_at >= "+arg(*opts.CreatedFrom))
	}
	if opts.CreatedTo != nil {
		conditions = append(conditions, "f.created_at <= "+arg(*opts.CreatedTo))
	}
	if opts.MinSize > 0 {
		conditions = append(conditions, "f.size_bytes >= "+arg(opts.MinSize))
	}
	if opts.MaxSize > 0 {
		conditions = append(conditions, "f.size_bytes <= "+arg(opts.MaxSize))
	}

	where := strings.Join(conditions, " AND ")

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = sortColumns[domain.SortByCreatedAt]
	}
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	countQuery := "SELECT COUNT(*) FROM file_records f WHERE " + where
	listQuery := fmt.Sprintf("SELECT %s FROM file_records f WHERE %s ORDER BY %s %s, f.id %s LIMIT %s OFFSET %s",
		fileColumns, where, column, direction, direction, arg(opts.Limit), arg(opts.Offset))

	return listQuery, countQuery, args
}

func scanFileRecord(row rowScanner) (*domain.FileRecord, error) {
	var (
		r                       domain.FileRecord
		organizationID, teamID  sql.NullString
		description, scanResult sql.NullString
		deletedBy               sql.NullString
		scanDate, deletedAt     sql.NullTime
		lastAccessedAt          sql.NullTime
		metadata                []byte
	)

	err := row.Scan(
		&r.ID, &r.OwnerID, &organizationID, &teamID, &r.OriginalName, &r.StorageKey,
		&r.MimeType, &r.SizeBytes, &r.Status, &r.Category, &description, &metadata, &r.ContentHash,
		&r.IsPublic, &r.ScanStatus, &scanDate, &scanResult, &r.CreatedAt, &r.UpdatedAt,
		&deletedAt, &deletedBy, &lastAccessedAt, &r.AccessCount,
	)
	if err != nil {
		return nil, err
	}

	r.Metadata, err = unmarshalMetadata(metadata)
	if err != nil {
		return nil, err
	}
	r.OrganizationID = nullString(organizationID)
	r.TeamID = nullString(teamID)
	r.Description = nullString(description)
	r.ScanResult = nullString(scanResult)
	r.DeletedBy = nullString(deletedBy)
	if scanDate.Valid {
		r.ScanDate = &scanDate.Time
	}
	if deletedAt.Valid {
		r.DeletedAt = &deletedAt.Time
	}
	if lastAccessedAt.Valid {
		r.LastAccessedAt = &lastAccessedAt.Time
	}
	return &r, nil
}
