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
	"github.com/lib/pq"
)

const shareColumns = `id, file_id, shared_by_id, shared_with_id, share_type, permissions, share_token,
	password_hash, expires_at, max_access_count, access_count, last_accessed_at, last_accessed_by,
	is_active, created_at, updated_at`

type sqlShareRepository struct {
	db SQLQuerier
}

// NewSqlShareRepository creates sqlShareRepository that implements port.ShareRepository
func NewSqlShareRepository(db SQLQuerier) port.ShareRepository {
	return &sqlShareRepository{db: db}
}

// Upsert inserts the grant, or refreshes the existing grant for the same target.
// A refreshed grant starts counting accesses from zero.
func (s *sqlShareRepository) Upsert(ctx context.Context, grant *domain.ShareGrant) (*domain.ShareGrant, error) {
	query := `INSERT INTO file_shares (id, file_id, shared_by_id, shared_with_id, share_type, permissions,
                  share_token, password_hash, expires_at, max_access_count, is_active)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
              ON CONFLICT (file_id, shared_with_id, share_type) DO UPDATE
              SET shared_by_id = EXCLUDED.shared_by_id,
                  permissions = EXCLUDED.permissions,
                  password_hash = EXCLUDED.password_hash,
                  expires_at = EXCLUDED.expires_at,
                  max_access_count = EXCLUDED.max_access_count,
                  access_count = 0,
                  last_accessed_at = NULL,
                  last_accessed_by = NULL,
                  is_active = TRUE,
                  updated_at = now()
              RETURNING ` + shareColumns

	saved, err := scanShare(s.db.QueryRowContext(ctx, query,
		grant.ID, grant.FileID, grant.SharedByID, grant.SharedWithID, grant.ShareType,
		pq.Array(permissionStrings(grant.Permissions)), grant.ShareToken, grant.PasswordHash,
		grant.ExpiresAt, grant.MaxAccessCount,
	))
	if err != nil {
		if _, ok := uniqueViolationConstraint(err); ok {
			return nil, fmt.Errorf("share token: %w", domain.ErrAlreadyExists)
		}
		return nil, persistenceErr("error upserting share", err)
	}
	return saved, nil
}

// FindByID finds a grant by id
func (s *sqlShareRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ShareGrant, error) {
	return s.findOne(ctx, `SELECT `+shareColumns+` FROM file_shares WHERE id = $1`, id)
}

// FindByToken finds a public link grant by token
func (s *sqlShareRepository) FindByToken(ctx context.Context, token string) (*domain.ShareGrant, error) {
	return s.findOne(ctx, `SELECT `+shareColumns+` FROM file_shares WHERE share_token = $1`, token)
}

func (s *sqlShareRepository) findOne(ctx context.Context, query string, arg any) (*domain.ShareGrant, error) {
	grant, err := scanShare(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrShareNotFound
		}
		return nil, persistenceErr("error finding share", err)
	}
	return grant, nil
}

// ListByFileID lists the grants of a file, oldest first
func (s *sqlShareRepository) ListByFileID(ctx context.Context, fileID uuid.UUID, activeOnly bool) ([]domain.ShareGrant, error) {
	query := `SELECT ` + shareColumns + ` FROM file_shares WHERE file_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, persistenceErr("error querying shares", err)
	}
	defer rows.Close()

	var grants []domain.ShareGrant
	for rows.Next() {
		grant, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning share: %w", err)
		}
		grants = append(grants, *grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shares: %w", err)
	}
	return grants, nil
}

// RecordAccess counts one use of a grant that is still usable at `at`
func (s *sqlShareRepository) RecordAccess(ctx context.Context, id uuid.UUID, accessedBy *string, at time.Time) error {
	query := `UPDATE file_shares
              SET access_count = access_count + 1, last_accessed_at = $1, last_accessed_by = $2, updated_at = now()
              WHERE id = $3 AND is_active
                AND (expires_at IS NULL OR expires_at > $1)
                AND (max_access_count = 0 OR access_count < max_access_count)`

	result, err := s.db.ExecContext(ctx, query, at, accessedBy, id)
	if err != nil {
		return persistenceErr("error recording share access", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrShareUnavailable
}

// Deactivate revokes a grant
func (s *sqlShareRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `UPDATE file_shares SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return persistenceErr("error deactivating share", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrShareNotFound
	}
	return nil
}

func permissionStrings(perms []domain.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func scanShare(row rowScanner) (*domain.ShareGrant, error) {
	var (
		g                        domain.ShareGrant
		sharedWithID, token      sql.NullString
		passwordHash, accessedBy sql.NullString
		expiresAt, accessedAt    sql.NullTime
		permissions              []string
	)

	err := row.Scan(
		&g.ID, &g.FileID, &g.SharedByID, &sharedWithID, &g.ShareType, pq.Array(&permissions), &token,
		&passwordHash, &expiresAt, &g.MaxAccessCount, &g.AccessCount, &accessedAt, &accessedBy,
		&g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Permissions = make([]domain.Permission, len(permissions))
	for i, p := range permissions {
		g.Permissions[i] = domain.Permission(p)
	}
	g.SharedWithID = nullString(sharedWithID)
	g.ShareToken = nullString(token)
	g.PasswordHash = nullString(passwordHash)
	g.LastAccessedBy = nullString(accessedBy)
	if expiresAt.Valid {
		g.ExpiresAt = &expiresAt.Time
	}
	if accessedAt.Valid {
		g.LastAccessedAt = &accessedAt.Time
	}
	return &g, nil
}
