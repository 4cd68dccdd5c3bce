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

	"github.com/yeoro/twogether/internal/directory"
	httpapi "github.com/yeoro/twogether/internal/http"
	"github.com/yeoro/twogether/internal/oauth"
	"github.com/yeoro/twogether/internal/service"
	"github.com/yeoro/twogether/internal/store"
	"github.com/yeoro/twogether/internal/store/drivers/memory"
	"github.com/yeoro/twogether/internal/store/drivers/redis"
	"github.com/yeoro/twogether/pkg/cryptox"
	"github.com/yeoro/twogether/pkg/jwtx"
	"github.com/yeoro/twogether/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the store, directory, services and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store  store.Store
	dir    directory.Directory
	signer *jwtx.Signer

	sessionService *service.SessionService
	memberService  *service.MemberService
	pairingService *service.PairingService
	otcService     *service.OTCService
	oauthService   *service.OAuthService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "twogether",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	signer, err := jwtx.NewSigner(cfg.JWTSecretHex, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET: %w", err)
	}
	app.signer = signer

	cryptox.SetPepper(cfg.PasswordPepper)

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("twogether starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store_driver", app.cfg.StoreDriver,
	)

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

// Shutdown gracefully stops the server and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down twogether...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("twogether stopped")
	return nil
}

func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case "memory":
		app.store = memory.NewStore()
		app.logger.Warn("using in-memory store; sessions will not survive a restart")
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		st, err := redis.NewStore(ctx, redis.Config{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		app.store = st
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", app.cfg.StoreDriver)
	}

	// TODO: replace with the database-backed directory once the diary
	// services land; until then members live in process.
	app.dir = directory.NewMemoryDirectory()
	return nil
}

func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:      app.store,
		Directory:  app.dir,
		Signer:     app.signer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.memberService = &service.MemberService{
		Directory: app.dir,
		Sessions:  app.sessionService,
	}

	app.pairingService = &service.PairingService{
		Store:     app.store,
		Directory: app.dir,
	}

	app.otcService = &service.OTCService{
		Store:    app.store,
		Sessions: app.sessionService,
	}

	if app.cfg.KakaoClientID == "" {
		app.logger.Warn("KAKAO_CLIENT_ID not set; kakao login will fail at the provider")
	}
	app.oauthService = &service.OAuthService{
		Store:     app.store,
		Directory: app.dir,
		OTC:       app.otcService,
		Provider: &oauth.Kakao{
			ClientID:     app.cfg.KakaoClientID,
			ClientSecret: app.cfg.KakaoClientSecret,
			RedirectURI:  app.cfg.KakaoRedirectURI,
		},
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.store, app.logger)
	router.FrontURL = app.cfg.FrontURL

	router.SessionService = app.sessionService
	router.MemberService = app.memberService
	router.PairingService = app.pairingService
	router.OTCService = app.otcService
	router.OAuthService = app.oauthService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
