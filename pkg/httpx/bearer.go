package httpx

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken returns the credential carried in an "Authorization: Bearer"
// header. Only the exact "Bearer " prefix is accepted; ok is false when the
// header is absent, uses another scheme or carries an empty token.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, bearerPrefix) {
		return "", false
	}
	raw := strings.TrimSpace(authz[len(bearerPrefix):])
	if raw == "" {
		return "", false
	}
	return raw, true
}

// SetBearerChallenge sets the RFC 6750 WWW-Authenticate header that
// accompanies a 401. desc is optional.
func SetBearerChallenge(w http.ResponseWriter, desc string) {
	challenge := `Bearer`
	if desc != "" {
		challenge += ` error="invalid_token", error_description="` + desc + `"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
}

// SetScopeChallenge sets the insufficient_scope challenge for a 403.
func SetScopeChallenge(w http.ResponseWriter, required ...string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
}
