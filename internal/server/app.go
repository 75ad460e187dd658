// Package server wires the auth service together: the database actor
// client, the account workflows, the HTTP API and the gRPC health endpoint.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/wsauth/internal/dbclient"
	"github.com/dmitrijs2005/wsauth/internal/endpoint"
	"github.com/dmitrijs2005/wsauth/internal/logging"
	"github.com/dmitrijs2005/wsauth/internal/metrics"
	"github.com/dmitrijs2005/wsauth/internal/server/auth"
	"github.com/dmitrijs2005/wsauth/internal/server/config"
	"github.com/dmitrijs2005/wsauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/wsauth/internal/server/tokens"
	"github.com/dmitrijs2005/wsauth/internal/server/users"

	gs "github.com/dmitrijs2005/wsauth/internal/server/grpc"
	hs "github.com/dmitrijs2005/wsauth/internal/server/http"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	client   *dbclient.Client
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	users    *users.Service
}

// NewApp loads the secrets and builds every component. Nothing is connected
// or listening until Run.
func NewApp(c *config.Config) (*App, error) {

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logging.NewJSON(os.Stdout, level)

	if err := c.LoadSecrets(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	minter, err := endpoint.NewMinter(c.DatabaseURL, []byte(c.SecretKey), c.EndpointTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("endpoint error: %w", err)
	}
	if err := minter.CheckSchedule(c.ReconnectInterval); err != nil {
		return nil, fmt.Errorf("endpoint error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mtr := metrics.New(registry)

	client := dbclient.New(minter, dbclient.WebSocketDialer{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}, dbclient.Config{
		ReconnectInterval: c.ReconnectInterval,
		HeartbeatInterval: c.HeartbeatInterval,
		RequestTimeout:    c.RequestTimeout,
		Serial:            c.Serial,
	}, logger, mtr)

	secret := []byte(c.SecretKey)
	rm := repomanager.NewActorRepositoryManager()
	issuer := tokens.NewIssuer(rm.Tokens(client), secret)
	hasher := auth.NewArgon2Hasher(auth.DefaultArgon2Params())
	us := users.NewService(client, rm, hasher, issuer, users.NewLogMailer(logger), c, logger, mtr)

	return &App{
		config:   c,
		logger:   logger,
		client:   client,
		registry: registry,
		metrics:  mtr,
		users:    us,
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

// Run connects to the database actor and serves until a signal arrives or
// one of the components fails. A failed initial connect is fatal.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	health := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.registry)
	app.client.OnStateChange(health.SetState)

	if err := app.client.Connect(ctx); err != nil {
		return fmt.Errorf("database actor unreachable: %w", err)
	}
	defer app.client.Close()

	handlers := hs.NewHandlers(app.users, app.client, app.logger)
	router := hs.NewRouter(handlers, hs.Options{
		Metrics:   app.metrics,
		Gatherer:  app.registry,
		RateLimit: app.config.RateLimit,
		RateBurst: app.config.RateBurst,
	})
	api := hs.NewServer(app.config.HTTPAddr, router, app.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.client.Run(gctx) })
	g.Go(func() error { return api.Run(gctx) })
	g.Go(func() error { return health.Run(gctx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}
