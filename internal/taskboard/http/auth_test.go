package http_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/authenticate", "/api/users/login"} {
		rec := s.do(request{method: http.MethodPost, path: path, body: tasksdk.LoginRequest{Email: adminEmail, Password: adminPassword}})
		require.Equal(t, http.StatusOK, rec.Code, path)

		pair := decode[tasksdk.TokenPair](t, rec)
		require.NotEmpty(t, pair.Token)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	}

	t.Run("wrong password", func(t *testing.T) {
		rec := s.do(request{method: http.MethodPost, path: "/api/authenticate", body: tasksdk.LoginRequest{Email: adminEmail, Password: "nope"}})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, tasksdk.ErrorCodeInvalidCredentials, decode[tasksdk.APIError](t, rec).Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := s.do(request{method: http.MethodPost, path: "/api/authenticate", body: map[string]string{"email": "not-an-email"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		apiErr := decode[tasksdk.APIError](t, rec)
		require.Equal(t, tasksdk.ErrorCodeValidation, apiErr.Code)
		require.Equal(t, "email", apiErr.Fields["email"])
		require.Equal(t, "required", apiErr.Fields["password"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := s.do(request{method: http.MethodPost, path: "/api/authenticate", body: "{"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdmissionOnCredentialEndpoints(t *testing.T) {
	s := newTestServer(t)

	// every credential endpoint and every client draws from the same bucket
	paths := []string{"/api/authenticate", "/api/users/login", "/api/refresh-token"}
	for i := range 10 {
		rec := s.do(request{
			method: http.MethodPost,
			path:   paths[i%len(paths)],
			body:   tasksdk.LoginRequest{Email: adminEmail, Password: "wrong"},
			remote: "10.0.0." + string(rune('0'+i)) + ":1",
		})
		require.NotEqual(t, http.StatusTooManyRequests, rec.Code, "request %d", i+1)
	}

	rec := s.do(request{method: http.MethodPost, path: "/api/authenticate", body: tasksdk.LoginRequest{Email: adminEmail, Password: adminPassword}})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get(httpx.RetryAfterSecondsHeader))
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, tasksdk.ErrorCodeRateLimited, decode[tasksdk.APIError](t, rec).Code)

	t.Run("other endpoints are not admission controlled", func(t *testing.T) {
		rec := s.do(request{method: http.MethodPost, path: "/api/logout", body: "whatever"})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRefresh(t *testing.T) {
	s := newTestServer(t)
	pair := s.login(adminEmail, adminPassword)

	t.Run("raw body", func(t *testing.T) {
		rec := s.do(request{method: http.MethodPost, path: "/api/refresh-token", body: pair.RefreshToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		token := decode[tasksdk.RefreshResponse](t, rec).Token

		rec = s.do(request{method: http.MethodGet, path: "/api/users", token: token})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("json body", func(t *testing.T) {
		rec := s.do(request{method: http.MethodPost, path: "/api/refresh-token", body: tasksdk.RefreshRequest{RefreshToken: pair.RefreshToken}})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("access token is refused", func(t *testing.T) {
		rec := s.do(request{method: http.MethodPost, path: "/api/refresh-token", body: pair.Token})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, tasksdk.ErrorCodeInvalidToken, decode[tasksdk.APIError](t, rec).Code)
	})

	t.Run("empty and garbage", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, s.do(request{method: http.MethodPost, path: "/api/refresh-token"}).Code)
		require.Equal(t, http.StatusUnauthorized, s.do(request{method: http.MethodPost, path: "/api/refresh-token", body: "garbage"}).Code)
	})

	t.Run("revoked by logout", func(t *testing.T) {
		rec := s.do(request{method: http.MethodPost, path: "/api/logout", body: tasksdk.LogoutRequest{Token: pair.RefreshToken}})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(request{method: http.MethodPost, path: "/api/refresh-token", body: pair.RefreshToken})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	pair := s.login(adminEmail, adminPassword)

	rec := s.do(request{method: http.MethodPost, path: "/api/logout", token: pair.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{}`, rec.Body.String())

	rec = s.do(request{method: http.MethodGet, path: "/api/tasks", token: pair.Token})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)

	t.Run("invalid tokens still succeed", func(t *testing.T) {
		for _, body := range []any{nil, "garbage", tasksdk.LogoutRequest{Token: "x.y.z"}, pair.Token} {
			rec := s.do(request{method: http.MethodPost, path: "/api/logout", body: body})
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}
