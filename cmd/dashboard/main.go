package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/store-dashboard/internal/activity"
	httptransport "github.com/spec-kit/store-dashboard/internal/api/http"
	"github.com/spec-kit/store-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/store-dashboard/internal/api/http/views"
	"github.com/spec-kit/store-dashboard/internal/auth"
	"github.com/spec-kit/store-dashboard/internal/config"
	"github.com/spec-kit/store-dashboard/internal/events"
	"github.com/spec-kit/store-dashboard/internal/flash"
	"github.com/spec-kit/store-dashboard/internal/observability"
	"github.com/spec-kit/store-dashboard/internal/persistence"
	"github.com/spec-kit/store-dashboard/internal/remote"
	"github.com/spec-kit/store-dashboard/internal/repository"
	"github.com/spec-kit/store-dashboard/internal/service"
	"github.com/spec-kit/store-dashboard/internal/session"
	"github.com/spec-kit/store-dashboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	storeAPI, err := remote.New(remote.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout(),
	}, remote.WithLogger(logger), remote.WithMetrics(metrics))
	if err != nil {
		logger.Fatal("invalid store api config", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	sinks := activity.MultiSink{activity.LogSink{Logger: logger}}
	var history repository.ActivityRepository
	if pg.Enabled() {
		history = repository.NewActivityRepository(pg.PoolHandle())
		sinks = append(sinks, activity.NewPostgresSink(history))
	}
	activityService := service.NewActivityService(dispatcher, sinks, history, logger)
	worker.StartActivityWorker(activityService)

	localFlashes := flash.NewMemoryStore(cfg.Session.FlashTTL())
	var flashStore flash.Store = localFlashes
	if redis.Available() {
		flashStore = flash.NewFallbackStore(flash.NewRedisStore(redis.Client, cfg.Session.FlashTTL()), localFlashes, logger)
	} else if redis != nil {
		logger.Warn("redis unreachable at startup; keeping flash messages in memory")
	}
	flashes := flash.NewManager(flashStore,
		flash.WithCookieName(cfg.Session.FlashCookieName),
		flash.WithSecureCookie(cfg.Session.CookieSecure),
		flash.WithLogger(logger),
	)

	routes := auth.Routes{Login: cfg.Session.LoginRoute, Home: cfg.Session.HomeRoute}
	guard := auth.Guard{CookieName: cfg.Session.CookieName, LoginRoute: cfg.Session.LoginRoute}
	authMiddleware := auth.NewAuthMiddleware(auth.MiddlewareConfig{
		API: storeAPI,
		Cookie: session.CookieOptions{
			Name:     cfg.Session.CookieName,
			Path:     cfg.Session.CookiePath,
			Domain:   cfg.Session.CookieDomain,
			Secure:   cfg.Session.CookieSecure,
			SameSite: cfg.Session.CookieSameSite,
		},
		Routes: routes,
		Notifiers: func(c *fiber.Ctx) auth.Notifier {
			return flashes.For(c)
		},
		Events:  dispatcher,
		Metrics: metrics,
		Logger:  logger,
	})

	pages := handlers.NewPages(flashes, guard, views.Layout)
	storeService := service.NewStoreService(logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		Views:                 views.NewEngine(),
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:      logger,
		Metrics:     metrics,
		Timeout:     cfg.App.RequestTimeout(),
		LoginRoute:  cfg.Session.LoginRoute,
		RenderError: pages.RenderError,
	})

	routeCfg := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, storeAPI),
		Auth:           handlers.NewAuthHandler(pages, routes),
		Stores:         handlers.NewStoresHandler(pages, storeService, activityService, logger),
		Dashboard:      handlers.NewDashboardHandler(pages, storeService),
		AuthMiddleware: authMiddleware,
		Guard:          guard,
	}
	if cfg.Metrics.Enabled {
		routeCfg.MetricsPath = cfg.Metrics.Path
		routeCfg.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	httptransport.RegisterRoutes(app, routeCfg)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store_api", storeAPI.BaseURL()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
