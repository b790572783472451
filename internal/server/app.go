// Package server assembles the claveo backend: it opens the database, runs
// migrations, builds the services and runs the REST and gRPC transports
// together with the expired-session reaper until a termination signal.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/dbx"
	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/auth"
	"github.com/dmitrijs2005/claveo/internal/server/config"
	"github.com/dmitrijs2005/claveo/internal/server/httpapi"
	"github.com/dmitrijs2005/claveo/internal/server/ratelimit"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/claveo/internal/server/services"
	"github.com/dmitrijs2005/claveo/internal/telemetry"

	gs "github.com/dmitrijs2005/claveo/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	limits   *ratelimit.Policy
	sessions *services.SessionService
	users    *services.UserService
	secrets  *services.SecretService
	tracing  func(ctx context.Context, serviceName, endpoint string) (telemetry.ShutdownFunc, error)

	mu        sync.Mutex
	serverErr error
}

// NewApp connects to the database, applies migrations and wires the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	hasher, err := auth.NewPasswordHasher(auth.Argon2Params{
		Memory:      c.HashMemoryKiB,
		Iterations:  c.HashIterations,
		Parallelism: c.HashParallelism,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	issuer := auth.NewIssuer(c.AccessTokenSecret, c.RefreshTokenSecret,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)

	pool := dbx.NewDB(db)
	sessions := services.NewSessionService(pool, rm, issuer, logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		limits:   ratelimit.DefaultPolicy(),
		sessions: sessions,
		users:    services.NewUserService(pool, rm, sessions, hasher, logger),
		secrets:  services.NewSecretService(pool, rm, logger),
		tracing:  telemetry.Setup,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// fail records a server error and brings the rest of the app down.
func (app *App) fail(ctx context.Context, cancelFunc context.CancelFunc, msg string, err error) {
	app.logger.Error(ctx, msg, "error", err)
	app.mu.Lock()
	app.serverErr = errors.Join(app.serverErr, err)
	app.mu.Unlock()
	cancelFunc()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	opts := httpapi.DefaultOptions()
	opts.AllowedOrigins = app.config.AllowedOrigins
	opts.Limits = app.limits

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, opts, app.logger, app.users, app.sessions, app.secrets)
	if err := s.Run(ctx); err != nil {
		app.fail(ctx, cancelFunc, "http server failed", fmt.Errorf("http server: %w", err))
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.limits, app.users, app.sessions, app.secrets)
	if err := s.Run(ctx); err != nil {
		app.fail(ctx, cancelFunc, "grpc server failed", fmt.Errorf("grpc server: %w", err))
	}
}

// Run serves until a signal arrives or one of the servers fails, then waits
// for everything to drain and closes the database. A server failure is
// returned joined with any close error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	shutdownTracing, err := app.tracing(ctx, common.ServiceName, app.config.OTLPEndpoint)
	if err != nil {
		return errors.Join(fmt.Errorf("tracing: %w", err), app.db.Close())
	}

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sessions.RunReaper(ctx, app.config.TokenReapInterval)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "Stopping app...")
	if err := shutdownTracing(context.Background()); err != nil {
		app.logger.Warn(context.Background(), "tracing shutdown", "error", err)
	}

	app.mu.Lock()
	serverErr := app.serverErr
	app.mu.Unlock()
	return errors.Join(serverErr, app.db.Close())
}
