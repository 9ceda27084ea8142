package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/marabinga/passport-dc/internal/portal/http"
	"github.com/marabinga/passport-dc/internal/portal/metrics"
	"github.com/marabinga/passport-dc/internal/portal/service"
	"github.com/marabinga/passport-dc/internal/portal/store"
	"github.com/marabinga/passport-dc/internal/portal/store/drivers/sqlite"
	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/oauth2x"
	"github.com/marabinga/passport-dc/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the portal together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	keys     Keys
	metrics  *metrics.Metrics
	strategy *discord.Strategy
	engine   *oauth2x.Engine[*discord.Profile]

	loginService        *service.LoginService
	sessionService      *service.SessionService
	userService         *service.UserService
	guildService        *service.GuildService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New validates cfg and initialises every dependency.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "passport-portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	keys, err := InitKeys(cfg)
	if err != nil {
		return nil, err
	}
	app.keys = keys

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initDiscord(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler is the root HTTP handler, middleware included.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("portal starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"scopes", app.cfg.DiscordScopes,
		"guild_join", app.guildService.Enabled(),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown drains the server, stops housekeeping and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down portal...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "err", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "err", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "err", err)
		return err
	}

	app.logger.Info("portal stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initDiscord() error {
	httpClient := app.metrics.InstrumentClient(&http.Client{})

	strategy, err := discord.New(discord.Config{
		ClientID:     app.cfg.DiscordClientID,
		ClientSecret: app.cfg.DiscordClientSecret,
		CallbackURL:  app.cfg.DiscordCallbackURL,
		Scopes:       app.cfg.DiscordScopes,
		Prompt:       app.cfg.DiscordPrompt,
		Permissions:  app.cfg.DiscordPermissions,
		APIBaseURL:   app.cfg.DiscordAPIURL,
		HTTPClient:   httpClient,
		Timeout:      app.cfg.DiscordTimeout,
		Logger:       app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize discord strategy: %w", err)
	}
	app.strategy = strategy

	app.engine = oauth2x.New[*discord.Profile](strategy, oauth2x.Options{
		HTTPClient:    httpClient,
		Logger:        app.logger,
		SecureCookies: app.cfg.SecureCookies,
		PKCE:          app.cfg.DiscordPKCE,
	})
	return nil
}

func (app *Application) initServices() {
	app.loginService = &service.LoginService{
		Store:      app.db,
		Sealer:     app.keys.Sealer,
		Signer:     app.keys.Signer,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
		Metrics:    app.metrics,
		Logger:     app.logger,
	}
	app.sessionService = &service.SessionService{Store: app.db}
	app.userService = &service.UserService{Store: app.db}
	app.guildService = &service.GuildService{
		Store:    app.db,
		Sealer:   app.keys.Sealer,
		Joiner:   app.strategy.Client(),
		GuildID:  app.cfg.DiscordGuildID,
		BotToken: app.cfg.DiscordBotToken,
		Roles:    app.cfg.DiscordJoinRoles,
		Metrics:  app.metrics,
		Logger:   app.logger,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.metrics,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.Verifier,
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	router.SecureCookies = app.cfg.SecureCookies
	router.Engine = app.engine
	router.LoginService = app.loginService
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.GuildService = app.guildService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
