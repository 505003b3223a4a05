package file

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"file-service/internal/core/domain"
	"fmt"
	"log/slog"
	"mime"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// shareTokenBytes is the entropy of a public link token
const shareTokenBytes = 24

// ShareFile creates or replaces a grant on a ready file. Requires ownership or the edit permission.
func (f *fileService) ShareFile(ctx context.Context, req domain.ShareRequest, requester domain.Identity) (*domain.ShareGrant, error) {
	if err := f.validateShareRequest(&req); err != nil {
		return nil, err
	}

	record, err := f.loadReady(ctx, req.FileID)
	if err != nil {
		return nil, err
	}

	if err := f.requirePermission(ctx, record, requester, domain.PermissionEdit); err != nil {
		return nil, err
	}
	if req.SharedWithID != nil && req.ShareType == domain.ShareTypeUser && *req.SharedWithID == record.OwnerID {
		return nil, fmt.Errorf("%w: cannot share a file with its owner", domain.ErrValidation)
	}
	if err := checkShareScope(record, req); err != nil {
		return nil, err
	}

	permissions := req.Permissions
	if len(permissions) == 0 {
		permissions = []domain.Permission{domain.PermissionView}
	}

	now := f.now()
	grant := &domain.ShareGrant{
		ID:             uuid.New(),
		FileID:         record.ID,
		SharedByID:     requester.UserID,
		SharedWithID:   req.SharedWithID,
		ShareType:      req.ShareType,
		Permissions:    permissions,
		ExpiresAt:      req.ExpiresAt,
		MaxAccessCount: req.MaxAccessCount,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if req.ShareType == domain.ShareTypePublicLink {
		token, err := newShareToken()
		if err != nil {
			return nil, err
		}
		grant.ShareToken = &token
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash share password: %w", err)
		}
		grant.PasswordHash = ptr(string(hash))
	}

	saved, err := f.uow.ShareRepo().Upsert(ctx, grant)
	if err != nil {
		return nil, err
	}
	f.grants.Invalidate(record.ID)

	f.logger.Info("file shared",
		slog.String("fileID", record.ID.String()),
		slog.String("shareID", saved.ID.String()),
		slog.String("shareType", string(saved.ShareType)))
	f.publish(ctx, domain.FileEventShared, record, requester.UserID, "")

	return saved, nil
}

func (f *fileService) validateShareRequest(req *domain.ShareRequest) error {
	if req.ShareType == domain.ShareTypePublicLink {
		if req.SharedWithID != nil {
			return fmt.Errorf("%w: public links have no target", domain.ErrValidation)
		}
	} else if req.SharedWithID == nil || *req.SharedWithID == "" {
		return fmt.Errorf("%w: %s shares need a target", domain.ErrValidation, req.ShareType)
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(f.now()) {
		return fmt.Errorf("%w: expiry must be in the future", domain.ErrValidation)
	}
	if req.MaxAccessCount < 0 {
		return fmt.Errorf("%w: max access count must not be negative", domain.ErrValidation)
	}
	return nil
}

// RevokeShare deactivates a grant of the file
func (f *fileService) RevokeShare(ctx context.Context, fileID, shareID uuid.UUID, requester domain.Identity) error {
	record, err := f.loadActive(ctx, fileID)
	if err != nil {
		return err
	}

	if err := f.requirePermission(ctx, record, requester, domain.PermissionEdit); err != nil {
		return err
	}

	grant, err := f.uow.ShareRepo().FindByID(ctx, shareID)
	if err != nil {
		return err
	}
	if grant.FileID != record.ID {
		return domain.ErrShareNotFound
	}

	if err := f.uow.ShareRepo().Deactivate(ctx, grant.ID); err != nil {
		return err
	}
	f.grants.Invalidate(record.ID)

	f.logger.Info("share revoked",
		slog.String("fileID", record.ID.String()),
		slog.String("shareID", grant.ID.String()))
	return nil
}

// AccessSharedLink resolves a public link token, checking its password and counting the use
func (f *fileService) AccessSharedLink(ctx context.Context, token, password string, accessedBy *string) (*domain.SharedFile, error) {
	if token == "" {
		return nil, domain.ErrShareNotFound
	}

	grant, err := f.uow.ShareRepo().FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if grant.ShareType != domain.ShareTypePublicLink {
		return nil, domain.ErrShareNotFound
	}

	now := f.now()
	if !grant.CanAccess(now) {
		return nil, domain.ErrShareUnavailable
	}

	if grant.RequiresPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(*grant.PasswordHash), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return nil, domain.ErrInvalidSharePassword
			}
			return nil, fmt.Errorf("failed to verify share password: %w", err)
		}
	}

	record, err := f.loadReady(ctx, grant.FileID)
	if err != nil {
		return nil, err
	}

	if err := f.uow.ShareRepo().RecordAccess(ctx, grant.ID, accessedBy, now); err != nil {
		return nil, err
	}
	grant.AccessCount++
	grant.LastAccessedAt = &now
	grant.LastAccessedBy = accessedBy

	if err := f.uow.FileRepo().IncrementAccess(ctx, record.ID, now); err != nil {
		f.logger.Warn("failed to record file access",
			slog.String("fileID", record.ID.String()),
			slog.Any("error", err))
	} else {
		record.AccessCount++
		record.LastAccessedAt = &now
	}

	shared := &domain.SharedFile{File: *record, Share: *grant}
	if grant.HasPermission(domain.PermissionDownload) {
		key, err := f.currentKey(ctx, record)
		if err != nil {
			return nil, err
		}
		url, err := f.storage.SignedDownloadURL(ctx, f.cfg.Bucket, key, f.cfg.DownloadURLTTL, domain.ResponseOverrides{
			ContentType:        record.MimeType,
			ContentDisposition: attachmentDisposition(record.OriginalName),
		})
		if err != nil {
			return nil, err
		}
		shared.DownloadURL = url
	}

	return shared, nil
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func attachmentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// checkShareScope keeps organization and team grants inside the file's own organization or team
func checkShareScope(record *domain.FileRecord, req domain.ShareRequest) error {
	var scope *string
	switch req.ShareType {
	case domain.ShareTypeOrganization:
		scope = record.OrganizationID
	case domain.ShareTypeTeam:
		scope = record.TeamID
	default:
		return nil
	}
	if req.SharedWithID == nil || scope == nil || *scope != *req.SharedWithID {
		return fmt.Errorf("%w: a %s grant must target the file's own %s", domain.ErrValidation, req.ShareType, req.ShareType)
	}
	return nil
}
