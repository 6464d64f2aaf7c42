package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/slogx"
)

// Authenticator turns a raw bearer token into a principal.
// *service.TokenService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (domain.Principal, error)
}

// AuthnMiddleware attaches a principal for requests carrying a valid
// bearer token. It never rejects: requests without a token, or with one
// that fails validation, continue anonymously and the route guards decide
// what that means.
func AuthnMiddleware(a Authenticator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := httpx.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			p, err := a.Authenticate(ctx, raw)
			if err != nil {
				slogx.FromContext(ctx).Debug("bearer token not accepted", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithPrincipal(ctx, p)
			ctx = slogx.With(ctx, slog.Int64("user_id", p.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
