package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	accountapp "github.com/dwikikusuma/storefront/internal/account/app"
	accountrest "github.com/dwikikusuma/storefront/internal/account/infra/rest"
	"github.com/dwikikusuma/storefront/internal/backend"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartgrpc "github.com/dwikikusuma/storefront/internal/cart/grpc"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	cartredis "github.com/dwikikusuma/storefront/internal/cart/infra/redis"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogrest "github.com/dwikikusuma/storefront/internal/catalog/infra/rest"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/httpapi"
	orderapp "github.com/dwikikusuma/storefront/internal/order/app"
	orderrest "github.com/dwikikusuma/storefront/internal/order/infra/rest"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"github.com/dwikikusuma/storefront/pkg/telemetry"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the storefront HTTP API and the gRPC health endpoint",
		Action: func(c *cli.Context) error { return serve(c.Context) },
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
	})

	stopTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		Service:  "storefront",
		Version:  version,
		Env:      cfg.AppEnv,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stopTelemetry(flushCtx); err != nil {
			log.Warn("telemetry shutdown", slog.Any("err", err))
		}
	}()

	snapshots, closeSnapshots, err := openSnapshots(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	sessions, err := cartapp.NewSessions(snapshots, cfg.SessionCacheSize, log)
	if err != nil {
		return err
	}

	api := backend.NewClient(backendURL(ctx, cfg, log),
		backend.WithLogger(log),
		backend.WithHTTPClient(&http.Client{
			Timeout:   cfg.BackendTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}))
	log.Info("backend configured", slog.String("base_url", api.BaseURL()))

	// Catalog
	catalogSvc := catalogapp.NewService(catalogrest.NewProductClient(api))

	// Orders and accounts
	orderSvc := orderapp.NewService(orderrest.NewOrderClient(api))
	accountSvc := accountapp.NewService(accountrest.NewUserClient(api))

	// Checkout (adapters)
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewSessionCartReader(),
		checkoutadapter.NewCatalogServiceReader(catalogSvc),
		checkoutadapter.NewOrderServiceWriter(orderSvc),
		cfg.CheckoutMaxConcurrent,
		log,
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Service:       "storefront",
		Sessions:      sessions,
		Catalog:       catalogSvc,
		Orders:        orderSvc,
		Accounts:      accountSvc,
		Checkout:      checkoutSvc,
		Log:           log,
		SessionCookie: cfg.SessionCookie,
		CookieMaxAge:  cfg.CartTTL,
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", grpcAddr))
		return err
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(grpcServer, cartgrpc.NewHealthServer(sessions))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", slog.Any("err", err))
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc serve error", slog.Any("err", err))
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}

		if !shutdown.Graceful(cfg.ShutdownTimeout, grpcServer.GracefulStop, grpcServer.Stop) {
			log.Warn("graceful stop timeout, forcing stop")
		}
		return nil
	})

	err = g.Wait()
	log.Info("bye", slog.Int("open_sessions", sessions.Len()))
	return err
}

func openSnapshots(ctx context.Context, cfg config.Config, log *slog.Logger) (cartapp.SnapshotStore, func(), error) {
	if !cfg.UseRedis() {
		log.Warn("REDIS_ADDR not set, cart snapshots kept in memory")
		return memory.NewSnapshotStore(), func() {}, nil
	}

	store := cartredis.NewSnapshotStore(cartredis.NewClient(cfg.RedisAddr), log,
		cartredis.WithKeyPrefix(cfg.RedisKeyPrefix),
		cartredis.WithTTL(cfg.CartTTL),
	)
	if err := store.Initialize(ctx, cfg.RedisConnectAttempts); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn("redis close", slog.Any("err", err))
		}
	}, nil
}

func backendURL(ctx context.Context, cfg config.Config, log *slog.Logger) string {
	if cfg.BackendURL != "" {
		return cfg.BackendURL
	}
	port := backend.Discover(ctx, backend.DiscoveryOptions{
		Host:         cfg.BackendHost,
		Ports:        cfg.BackendPorts,
		Fallback:     cfg.BackendFallbackPort,
		ProbeTimeout: cfg.BackendProbeTimeout,
	}, log)
	return backend.BaseURL("http", cfg.BackendHost, port)
}
