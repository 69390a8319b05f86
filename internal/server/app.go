// Package server wires configuration, storage, the auth service and the
// HTTP API into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/staffhub/internal/logging"
	"github.com/dmitrijs2005/staffhub/internal/server/auth"
	"github.com/dmitrijs2005/staffhub/internal/server/config"
	"github.com/dmitrijs2005/staffhub/internal/server/httpapi"
	"github.com/dmitrijs2005/staffhub/internal/server/services"
	"github.com/dmitrijs2005/staffhub/internal/server/store"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// NewApp builds the application. A missing signing secret is fatal here so
// the server never starts unable to issue tokens.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.Env, os.Stdout)

	issuer, err := auth.NewIssuer(c.SigningSecret(), c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w (set %s or the -s flag)", err, config.SecretEnvVar)
	}

	hasher, err := auth.NewHasher(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	st, db, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	svc := services.NewAuthService(st, issuer, hasher, logger.With("module", "auth_service"))

	if c.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := httpapi.NewServer(httpapi.Options{
		Addr:            c.HTTPAddr,
		AppName:         c.AppName,
		SecureCookies:   c.IsProduction(),
		AccessTTL:       c.AccessTokenValidityDuration,
		RefreshTTL:      c.RefreshTokenValidityDuration,
		ShutdownTimeout: c.ShutdownTimeout,
	}, svc, logger)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is canceled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "app", app.config.AppName, "env", app.config.Env)

	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "close database", "error", cerr)
		}
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
