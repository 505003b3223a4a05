package httpapi

import (
	"context"
	"file-service/internal/core/domain"
	"net/http"
	"strings"
)

// Gateway identity headers
const (
	HeaderUserID         = "X-User-Id"
	HeaderUserRoles      = "X-User-Roles"
	HeaderOrganizationID = "X-Organization-Id"
	HeaderTeamIDs        = "X-Team-Ids"
)

type identityKey struct{}

// RequireIdentity rejects requests without a user id header with 401
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromHeaders(r.Header)
		if !ok {
			WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing "+HeaderUserID+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// OptionalIdentity attaches the identity when the gateway sent one
func OptionalIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := identityFromHeaders(r.Header); ok {
			r = r.WithContext(WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity stores identity in ctx
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity stored by the middlewares
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domain.Identity)
	return identity, ok
}

func identityFromHeaders(h http.Header) (domain.Identity, bool) {
	userID := strings.TrimSpace(h.Get(HeaderUserID))
	if userID == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{
		UserID:         userID,
		Roles:          splitList(h.Get(HeaderUserRoles)),
		OrganizationID: strings.TrimSpace(h.Get(HeaderOrganizationID)),
		TeamIDs:        splitList(h.Get(HeaderTeamIDs)),
	}, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
