package http

import (
	"net/http"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
)

// RequireAuthenticated answers 401 when no principal is attached.
func RequireAuthenticated() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFrom(r.Context()) == nil {
				writeUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 401 for anonymous requests and 403 when the
// principal lacks role.
func RequireRole(role domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFrom(r.Context())
			if p == nil {
				writeUnauthorized(w, r)
				return
			}
			if !p.HasRole(role) {
				httpx.SetScopeChallenge(w, string(role))
				tasksdk.ErrAccessDenied.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	desc := ""
	if _, ok := httpx.BearerToken(r); ok {
		desc = "the access token is invalid, expired or revoked"
	}
	httpx.SetBearerChallenge(w, desc)
	tasksdk.ErrUnauthorized.WriteError(w)
}
