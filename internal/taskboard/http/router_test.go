package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	taskhttp "github.com/aussiebroadwan/taskboard/internal/taskboard/http"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store/drivers/memory"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store/drivers/sqlite"
	"github.com/aussiebroadwan/taskboard/pkg/cryptox"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/jwtx"
	"github.com/aussiebroadwan/taskboard/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@x.com"
	adminPassword = "Admin123!"
)

type testServer struct {
	t      *testing.T
	router *taskhttp.Router
	tokens *service.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "taskboard.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewHMACCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	hasher := cryptox.NewPasswordHasher([]byte("pepper")).WithParams(cryptox.Argon2Params{
		Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 16, SaltLength: 8,
	})
	identities := service.NewIdentityResolver(st, 0)
	tokens := &service.TokenService{
		Codec:       codec,
		Revocations: memory.NewRevocationStore(),
		Identities:  identities,
		AccessTTL:   time.Hour,
		RefreshTTL:  24 * time.Hour,
		Leeway:      codec.Leeway(),
	}

	boot := &service.BootstrapService{Store: st, Hasher: hasher, AdminEmail: adminEmail, AdminPassword: adminPassword}
	_, err = boot.Bootstrap(ctx)
	require.NoError(t, err)

	admission, err := httpx.NewAdmissionLimiter(httpx.DefaultAdmissionConfig())
	require.NoError(t, err)

	r := taskhttp.NewRouter("test", st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.Admission = admission.Middleware()
	r.TokenService = tokens
	r.AuthService = &service.AuthService{Store: st, Hasher: hasher, Tokens: tokens, Identities: identities}
	r.UserService = &service.UserService{Store: st, Hasher: hasher, Identities: identities}
	r.TaskService = &service.TaskService{Store: st}
	r.ApplyRoutes()

	return &testServer{t: t, router: r, tokens: tokens}
}

type request struct {
	method, path string
	body         any
	token        string
	remote       string
}

func (s *testServer) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()

	var body io.Reader
	switch b := req.body.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		body = strings.NewReader(string(raw))
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.remote != "" {
		r.RemoteAddr = req.remote
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) login(email, password string) tasksdk.TokenPair {
	s.t.Helper()
	rec := s.do(request{method: http.MethodPost, path: "/api/authenticate", body: tasksdk.LoginRequest{Email: email, Password: password}})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tasksdk.TokenPair](s.t, rec)
}

func (s *testServer) register(email string) tasksdk.User {
	s.t.Helper()
	rec := s.do(request{
		method: http.MethodPost,
		path:   "/api/users/register",
		body:   tasksdk.RegisterRequest{FirstName: "Test", LastName: "User", Email: email, Password: "Secret1!"},
		remote: email + ":1",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[tasksdk.User](s.t, rec)
}
