package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskboard/internal/taskboard/domain"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/slogx"

	_ "github.com/aussiebroadwan/taskboard/api/taskboard" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// Admission guards the credential endpoints. Nil disables it.
	Admission httpx.Middleware

	TokenService *service.TokenService
	AuthService  *service.AuthService
	UserService  *service.UserService
	TaskService  *service.TaskService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every endpoint. Services must be set first.
func (r *Router) ApplyRoutes() {
	r.middlewares = append(r.middlewares, AuthnMiddleware(r.TokenService))

	r.registerAuth()
	r.registerUsers()
	r.registerTasks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Taskboard API
//	@version		0.1.0
//	@description	Task tracking backend. Access tokens are HS256 JWTs sent as "Authorization: Bearer {token}".
//	@description	Login, refresh and logout manage the token lifecycle; tasks and users are guarded by role and ownership.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/taskboard
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, TokenService: r.TokenService}

	// Credential endpoints share one admission bucket
	login := httpx.Chain(http.HandlerFunc(h.HandleLogin), r.Admission)
	r.Mux.Handle("POST /api/authenticate", login)
	r.Mux.Handle("POST /api/users/login", login)
	r.Mux.Handle("POST /api/refresh-token", httpx.Chain(http.HandlerFunc(h.HandleRefresh), r.Admission))

	// Logout always answers 200, so there is nothing to guard
	r.Mux.HandleFunc("POST /api/logout", h.HandleLogout)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// POST /register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /api/users/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, RequireRole(domain.RoleAdmin))
	}
	authed := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, RequireAuthenticated())
	}

	r.Mux.Handle("GET /api/users", admin(h.HandleList))
	r.Mux.Handle("POST /api/users/{id}/assign-admin", admin(h.HandleAssignAdmin))

	// Admin or self, decided by the service
	r.Mux.Handle("GET /api/users/{id}", authed(h.HandleGet))
	r.Mux.Handle("PUT /api/users/{id}", authed(h.HandleUpdate))
	r.Mux.Handle("DELETE /api/users/{id}", authed(h.HandleDelete))
}

func (r *Router) registerTasks() {
	h := &TasksHandler{TaskService: r.TaskService}

	authed := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, RequireAuthenticated())
	}

	r.Mux.HandleFunc("GET /api/tasks/home", h.HandleHome)
	r.Mux.Handle("POST /api/tasks", authed(h.HandleCreate))
	r.Mux.Handle("GET /api/tasks", authed(h.HandleList))
	r.Mux.Handle("GET /api/tasks/filter", authed(h.HandleFilter))
	r.Mux.Handle("GET /api/tasks/{id}", authed(h.HandleGet))
	r.Mux.Handle("PUT /api/tasks/{id}", authed(h.HandleUpdate))
	r.Mux.Handle("DELETE /api/tasks/{id}", authed(h.HandleDelete))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.TokenService.Codec),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
