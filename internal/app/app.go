package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/graphadmin-backend/internal/http"
	"github.com/yungbote/graphadmin-backend/internal/observability"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

const serviceVersion = "0.1.0"

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Stores   Stores
	Services Services
	Metrics  *observability.Metrics
	Router   *gin.Engine

	server       *http.Server
	otelShutdown func(context.Context) error
}

// New builds the logger and config from the environment and wires the app.
func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envLogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     serviceVersion,
	})

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	stores, err := wireStores(log, cfg, clients)
	if err != nil {
		clients.Close(ctx)
		_ = otelShutdown(ctx)
		return nil, err
	}
	serviceset := wireServices(log, cfg, stores)
	metrics := observability.NewMetrics()
	handlerset := wireHandlers(log, cfg, serviceset, metrics, clients.Pingers())
	server := http.NewServer(":"+cfg.Port, routerConfig(log, cfg, handlerset, metrics))

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Stores:       stores,
		Services:     serviceset,
		Metrics:      metrics,
		Router:       server.Engine,
		server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then drains in-flight
// requests within ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("Server listening", "port", a.Cfg.Port)
		return a.server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := a.Cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.Log.Info("Shutting down server", "timeout", timeout)
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Clients.Close(ctx)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
