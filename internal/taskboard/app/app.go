package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/taskboard/internal/taskboard/http"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/service"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store/drivers/memory"
	"github.com/aussiebroadwan/taskboard/internal/taskboard/store/drivers/sqlite"
	"github.com/aussiebroadwan/taskboard/pkg/cryptox"
	"github.com/aussiebroadwan/taskboard/pkg/httpx"
	"github.com/aussiebroadwan/taskboard/pkg/jwtx"
	"github.com/aussiebroadwan/taskboard/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application holds the taskboard service and all of its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	codec       *jwtx.HMACCodec
	hasher      *cryptox.PasswordHasher
	revocations service.RevocationStore
	admission   httpx.Middleware

	// Services
	identities          *service.IdentityResolver
	tokenService        *service.TokenService
	authService         *service.AuthService
	userService         *service.UserService
	taskService         *service.TaskService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized. cfg must
// already be validated.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "taskboard",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	app.codec, err = jwtx.NewHMACCodec([]byte(cfg.JWTSecret), jwtx.WithLeeway(cfg.ClockSkew))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initAdmission(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if _, err := app.bootstrapService.Bootstrap(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests that drive the
// application without a listener.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("taskboard starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"revocation_backend", app.cfg.RevocationBackend,
		"admission_per_client", app.cfg.AdmissionPerClient,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down taskboard...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("taskboard stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully")

	switch app.cfg.RevocationBackend {
	case RevocationBackendMemory:
		app.revocations = memory.NewRevocationStore()
	default:
		app.revocations = store.NewRevocationAdapter(db)
	}
	return nil
}

// initAdmission builds the guard for the credential endpoints: one shared
// bucket, or one bucket per client IP when configured.
func (app *Application) initAdmission() error {
	if app.cfg.AdmissionPerClient {
		app.admission = httpx.RateLimitMiddleware(httpx.FromAdmission(app.cfg.Admission), httpx.IPKeyExtractor)
		return nil
	}

	limiter, err := httpx.NewAdmissionLimiter(app.cfg.Admission)
	if err != nil {
		return fmt.Errorf("failed to initialize admission limiter: %w", err)
	}
	app.admission = limiter.Middleware()
	return nil
}

func (app *Application) initServices() {
	// Cached roles must not outlive the tokens that carry them.
	cacheTTL := min(app.cfg.IdentityCacheTTL, app.cfg.AccessTTL)
	app.identities = service.NewIdentityResolver(app.db, cacheTTL)

	app.tokenService = &service.TokenService{
		Codec:       app.codec,
		Revocations: app.revocations,
		Identities:  app.identities,
		AccessTTL:   app.cfg.AccessTTL,
		RefreshTTL:  app.cfg.RefreshTTL,
		Leeway:      app.codec.Leeway(),
	}
	app.authService = &service.AuthService{
		Store:      app.db,
		Hasher:     app.hasher,
		Tokens:     app.tokenService,
		Identities: app.identities,
	}
	app.userService = &service.UserService{
		Store:      app.db,
		Hasher:     app.hasher,
		Identities: app.identities,
	}
	app.taskService = &service.TaskService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		Hasher:        app.hasher,
		AdminEmail:    app.cfg.BootstrapAdminEmail,
		AdminPassword: app.cfg.BootstrapAdminPassword,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.revocations,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.Admission = app.admission
	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.UserService = app.userService
	router.TaskService = app.taskService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
