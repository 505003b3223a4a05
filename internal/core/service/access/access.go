// Package access decides who may read or act on a file.
package access

import (
	"file-service/internal/core/domain"
	"time"
)

// HasAccess reports whether identity may read file: owner, public file or a matching usable grant
func HasAccess(file *domain.FileRecord, identity domain.Identity, grants []domain.ShareGrant, now time.Time) bool {
	if isOwner(file, identity) || file.IsPublic {
		return true
	}
	for i := range grants {
		if matches(file, &grants[i], identity, now) {
			return true
		}
	}
	return false
}

// HasPermission reports whether identity holds perm on file. Owners hold every permission.
func HasPermission(file *domain.FileRecord, identity domain.Identity, grants []domain.ShareGrant, perm domain.Permission, now time.Time) bool {
	if isOwner(file, identity) {
		return true
	}
	for i := range grants {
		if matches(file, &grants[i], identity, now) && grants[i].HasPermission(perm) {
			return true
		}
	}
	return false
}

// CanDownload allows public files to everyone, otherwise the download permission is required
func CanDownload(file *domain.FileRecord, identity domain.Identity, grants []domain.ShareGrant, now time.Time) bool {
	return file.IsPublic || HasPermission(file, identity, grants, domain.PermissionDownload, now)
}

func isOwner(file *domain.FileRecord, identity domain.Identity) bool {
	return identity.UserID != "" && file.OwnerID == identity.UserID
}

// sameScope reports whether an organization or team grant targets the file's own scope
func sameScope(scope *string, target string) bool {
	return scope != nil && *scope != "" && *scope == target
}

// matches never accepts public links, those resolve by token only.
// Organization and team grants only reach members of the file's own organization or team.
func matches(file *domain.FileRecord, grant *domain.ShareGrant, identity domain.Identity, now time.Time) bool {
	if grant.FileID != file.ID || grant.SharedWithID == nil || !grant.CanAccess(now) {
		return false
	}
	target := *grant.SharedWithID
	switch grant.ShareType {
	case domain.ShareTypeUser:
		return identity.UserID != "" && target == identity.UserID
	case domain.ShareTypeOrganization:
		return sameScope(file.OrganizationID, target) && target == identity.OrganizationID
	case domain.ShareTypeTeam:
		return sameScope(file.TeamID, target) && identity.InTeam(target)
	}
	return false
}
