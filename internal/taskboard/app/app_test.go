package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	c := NewConfig()
	c.JWTSecret = testSecret
	c.DatabaseFile = filepath.Join(dir, "taskboard.db")
	c.PepperFile = filepath.Join(dir, "pepper")
	c.BootstrapAdminEmail = "root@example.com"
	c.BootstrapAdminPassword = "Root1234!"
	c.LogLevel = "error"
	require.NoError(t, c.Validate())
	return *c
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApplicationWiring(t *testing.T) {
	for _, backend := range []string{RevocationBackendSQLite, RevocationBackendMemory} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.RevocationBackend = backend

			app, err := New(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = app.db.Close() })

			h := app.Handler()

			rec := postJSON(t, h, "/api/authenticate", tasksdk.LoginRequest{Email: "root@example.com", Password: "Root1234!"})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var pair tasksdk.TokenPair
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
			require.NotEmpty(t, pair.Token)

			principal, err := app.tokenService.Authenticate(t.Context(), pair.Token)
			require.NoError(t, err)
			require.True(t, principal.IsAdmin())

			rec = postJSON(t, h, "/api/logout", map[string]string{"token": pair.Token})
			require.Equal(t, http.StatusOK, rec.Code)

			_, err = app.tokenService.Authenticate(t.Context(), pair.Token)
			require.Error(t, err)
		})
	}
}

func TestApplicationBootstrapRunsOnce(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, first.db.Close())

	cfg.BootstrapAdminPassword = "Other1234!"
	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.db.Close() })

	rec := postJSON(t, second.Handler(), "/api/authenticate", tasksdk.LoginRequest{Email: "root@example.com", Password: "Other1234!"})
	require.Equal(t, http.StatusUnauthorized, rec.Code, "existing database keeps the first admin")
}

func TestApplicationPerClientAdmission(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdmissionPerClient = true
	cfg.Admission.Capacity = 1
	cfg.Admission.Refill = 1

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	call := func(ip string) int {
		b, _ := json.Marshal(tasksdk.LoginRequest{Email: "nobody@example.com", Password: "x"})
		req := httptest.NewRequest(http.MethodPost, "/api/authenticate", bytes.NewReader(b))
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusUnauthorized, call("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	require.Equal(t, http.StatusUnauthorized, call("10.0.0.2"))
}

func TestNewRejectsUnreadablePepper(t *testing.T) {
	cfg := testConfig(t)
	cfg.PepperFile = t.TempDir()

	_, err := New(cfg)
	require.Error(t, err)
}
