// Package server wires storage, services and transports together and runs
// them until the process is signalled to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server/auth"
	"github.com/dmitrijs2005/contactkeeper/internal/server/avatar"
	"github.com/dmitrijs2005/contactkeeper/internal/server/config"
	"github.com/dmitrijs2005/contactkeeper/internal/server/mail"
	"github.com/dmitrijs2005/contactkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/contactkeeper/internal/server/rest"
	"github.com/dmitrijs2005/contactkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/contactkeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	dispatcher  *mail.Dispatcher
	restServer  *rest.Server
	grpcServer  *gs.GRPCServer
}

// OpenStorage returns the Postgres repository manager with migrations applied,
// or an in-memory one when no DSN is configured.
func OpenStorage(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.InMemory() {
		logger.Warn(ctx, "no database DSN configured, data is kept in memory")
		return repomanager.NewInMemoryRepositoryManager(nil), nil
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return rm, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	rm, err := OpenStorage(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	registry := metrics.NewRegistry()
	m := metrics.NewMetrics(registry)

	sender, err := mail.NewSMTPSender(c)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("mail init error: %w", err)
	}
	dispatcher := mail.NewDispatcher(sender, c.MailQueueSize, c.MailWorkers, logger.With("module", "mail"), m)

	var uploader services.AvatarUploader
	if c.S3BaseEndpoint != "" {
		u, err := avatar.NewS3Uploader(ctx, c)
		if err != nil {
			_ = rm.Close()
			return nil, fmt.Errorf("avatar storage init error: %w", err)
		}
		uploader = u
	} else {
		logger.Warn(ctx, "no S3 endpoint configured, avatar uploads are disabled")
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), nil)
	hasher := auth.NewBcryptHasher()

	as := services.NewAuthService(rm, tokens, hasher, mail.NewNotifier(dispatcher), c, logger, m)
	cs := services.NewContactService(rm, logger)
	us := services.NewUserService(rm, hasher, uploader, logger)

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		dispatcher:  dispatcher,
		restServer:  rest.NewServer(c.EndpointAddrHTTP, as, cs, us, m, metrics.Handler(registry), logger),
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
	}, nil
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

// serve runs fn and cancels the app when it fails.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, name+" server error", "error", err)
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or a server fails, then
// stops the servers, drains the mail queue and closes storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.dispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "HTTP", app.restServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "gRPC", app.grpcServer.Run)
	}()

	app.grpcServer.SetServing(true)

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "error closing storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
