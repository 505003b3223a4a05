package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ShareType is the kind of target a grant points at
type ShareType string

const (
	ShareTypeUser         ShareType = "user"
	ShareTypeTeam         ShareType = "team"
	ShareTypeOrganization ShareType = "organization"
	ShareTypePublicLink   ShareType = "public_link"
)

// ParseShareType validates a share type
func ParseShareType(raw string) (ShareType, error) {
	t := ShareType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case ShareTypeUser, ShareTypeTeam, ShareTypeOrganization, ShareTypePublicLink:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown share type %q", ErrValidation, raw)
}

// Permission is an action a grant allows
type Permission string

const (
	PermissionView     Permission = "view"
	PermissionDownload Permission = "download"
	PermissionEdit     Permission = "edit"
	PermissionDelete   Permission = "delete"
)

// ParsePermissions validates and de-duplicates permissions, defaulting to view
func ParsePermissions(raw []string) ([]Permission, error) {
	if len(raw) == 0 {
		return []Permission{PermissionView}, nil
	}
	seen := make(map[Permission]bool, len(raw))
	perms := make([]Permission, 0, len(raw))
	for _, r := range raw {
		p := Permission(strings.ToLower(strings.TrimSpace(r)))
		switch p {
		case PermissionView, PermissionDownload, PermissionEdit, PermissionDelete:
		default:
			return nil, fmt.Errorf("%w: unknown permission %q", ErrValidation, r)
		}
		if !seen[p] {
			seen[p] = true
			perms = append(perms, p)
		}
	}
	return perms, nil
}

// ShareGrant represents a permission grant on a file
type ShareGrant struct {
	ID             uuid.UUID
	FileID         uuid.UUID
	SharedByID     string
	SharedWithID   *string
	ShareType      ShareType
	Permissions    []Permission
	ShareToken     *string
	PasswordHash   *string
	ExpiresAt      *time.Time
	MaxAccessCount int
	AccessCount    int
	LastAccessedAt *time.Time
	LastAccessedBy *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsExpired reports whether the grant expiry is in the past
func (s *ShareGrant) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// IsMaxAccessReached reports whether a bounded grant has been used up
func (s *ShareGrant) IsMaxAccessReached() bool {
	return s.MaxAccessCount > 0 && s.AccessCount >= s.MaxAccessCount
}

// CanAccess = active, not expired and not exhausted
func (s *ShareGrant) CanAccess(now time.Time) bool {
	return s.IsActive && !s.IsExpired(now) && !s.IsMaxAccessReached()
}

// HasPermission reports whether the grant lists p
func (s *ShareGrant) HasPermission(p Permission) bool {
	for _, granted := range s.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// RequiresPassword reports whether the link is password gated
func (s *ShareGrant) RequiresPassword() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}

// ShareRequest is the input of a share operation
type ShareRequest struct {
	FileID         uuid.UUID
	SharedWithID   *string
	ShareType      ShareType
	Permissions    []Permission
	Password       string
	ExpiresAt      *time.Time
	MaxAccessCount int
}
