// Package app wires configuration, storage, token machinery and the HTTP
// surface into a runnable authentication service.
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

	httpapi "github.com/cartside/cartside/internal/auth/http"
	"github.com/cartside/cartside/internal/auth/service"
	"github.com/cartside/cartside/internal/auth/session"
	"github.com/cartside/cartside/internal/auth/store"
	"github.com/cartside/cartside/internal/auth/store/drivers/mongo"
	"github.com/cartside/cartside/pkg/cachex"
	"github.com/cartside/cartside/pkg/jwtx"
	"github.com/cartside/cartside/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	cache *cachex.Client
	codec *jwtx.Codec

	registry  *session.Registry
	blacklist *session.Blacklist

	authService *service.AuthService
	otpService  *service.OTPService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "cartside-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initCodec(); err != nil {
		return nil, err
	}
	if err := app.initStores(ctx); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
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

// Shutdown gracefully drains the server and closes the stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing cache", "error", err)
	}
	if err := app.db.Close(ctx); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initCodec builds the token codec from the configured secrets. A missing
// admin secret falls back to its standard counterpart, which collapses the
// two signing domains; that is loud in the log on purpose.
func (app *Application) initCodec() error {
	adminAccess := app.cfg.AdminAccessSecret
	if adminAccess == "" {
		adminAccess = app.cfg.AccessSecret
		app.logger.Warn("ADMIN_ACCESS_TOKEN_SECRET not set, admin access tokens share the standard secret")
	}
	adminRefresh := app.cfg.AdminRefreshSecret
	if adminRefresh == "" {
		adminRefresh = app.cfg.RefreshSecret
		app.logger.Warn("ADMIN_REFRESH_TOKEN_SECRET not set, admin refresh tokens share the standard secret")
	}

	codec, err := jwtx.NewCodec(app.cfg.Issuer, jwtx.Secrets{
		Access:       []byte(app.cfg.AccessSecret),
		Refresh:      []byte(app.cfg.RefreshSecret),
		AdminAccess:  []byte(adminAccess),
		AdminRefresh: []byte(adminRefresh),
	}, jwtx.TTLs{
		Access:       app.cfg.AccessTTL,
		Refresh:      app.cfg.RefreshTTL,
		AdminAccess:  app.cfg.AdminAccessTTL,
		AdminRefresh: app.cfg.AdminRefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}

	app.codec = codec
	return nil
}

// initStores connects the identity store and the cache store. Both are
// hard dependencies; the service does not start degraded.
func (app *Application) initStores(ctx context.Context) error {
	db, err := mongo.NewStore(ctx, app.cfg.MongoURI, app.cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("failed to connect to mongo: %w", err)
	}
	app.db = db

	cache, err := cachex.Connect(ctx, cachex.Config{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	if err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.cache = cache

	app.logger.Info("stores connected", "mongo_db", app.cfg.MongoDatabase, "redis_addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes session state and the business logic services.
func (app *Application) initServices() {
	app.registry = session.NewRegistry(app.cache, app.codec)
	app.blacklist = session.NewBlacklist(app.cache, app.codec)

	app.authService = &service.AuthService{
		Store:     app.db,
		Codec:     app.codec,
		Registry:  app.registry,
		Blacklist: app.blacklist,
	}

	app.otpService = &service.OTPService{
		Store:      app.db,
		Cache:      app.cache,
		Mailer:     service.LogMailer{},
		Auth:       app.authService,
		CodeTTL:    app.cfg.OTPTTL,
		RateLimit:  app.cfg.OTPRateLimit,
		RateWindow: app.cfg.OTPRateWindow,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.blacklist,
		httpapi.CookieConfig{
			Domain: app.cfg.CookieDomain,
			Secure: app.cfg.CookieSecure,
		},
		BuildVersion,
		app.db,
		app.cache,
		app.logger,
	)

	router.AuthService = app.authService
	router.OTPService = app.otpService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
