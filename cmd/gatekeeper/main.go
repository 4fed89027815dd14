package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendora/gatekeeper/pkg/api"
	"github.com/vendora/gatekeeper/pkg/authstate"
	"github.com/vendora/gatekeeper/pkg/config"
	"github.com/vendora/gatekeeper/pkg/httputil"
	"github.com/vendora/gatekeeper/pkg/identity"
	"github.com/vendora/gatekeeper/pkg/middleware"
	"github.com/vendora/gatekeeper/pkg/observability"
	"github.com/vendora/gatekeeper/pkg/routes"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).Named("gatekeeper")

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnLifetime)

	if err := db.Ping(); err != nil {
		log.WithError(err).Error("failed to ping database")
		os.Exit(1)
	}

	pgStore := identity.NewPGStore(db)
	if err := pgStore.Migrate(context.Background()); err != nil {
		log.WithError(err).Error("migration failed")
		os.Exit(1)
	}

	var redisClient *redis.Client
	cacheOpts := []identity.CacheOption{identity.WithCacheTTL(cfg.Cache.TTL)}
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		cacheOpts = append(cacheOpts, identity.WithRedis(redisClient))
		log.Info("redis cache tier enabled", "addr", cfg.Redis.Addr)
	}
	profiles := identity.NewCachingStore(pgStore, cfg.Cache.Size, cacheOpts...)

	var provider identity.Provider
	if cfg.ProviderConfigured() {
		provider, err = identity.NewOIDCProvider(context.Background(), cfg.Provider)
		if err != nil {
			log.WithError(err).Error("failed to initialize identity provider")
			os.Exit(1)
		}
	} else {
		log.Warn("identity provider credentials missing, auth flows will report unconfigured")
		provider = identity.NewUnconfiguredProvider()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	store := authstate.New(provider, profiles,
		authstate.WithLogger(log),
		authstate.WithMetrics(authstate.NewMetrics(registry)),
		authstate.WithInvalidator(profiles),
	)
	if err := store.Start(context.Background()); err != nil {
		log.WithError(err).Error("failed to start auth state store")
		os.Exit(1)
	}
	defer store.Close()

	routeCfg := routes.PlatformConfig()

	chain := []func(http.Handler) http.Handler{
		httputil.RecoveryMiddleware(log),
		middleware.NewRequestID(log).Handler,
		httputil.LoggingMiddleware(log),
	}
	if cfg.Redis.Enabled {
		limiter := middleware.NewRateLimitMiddleware(redisClient, &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			WindowDuration:    cfg.RateLimit.WindowDuration,
		})
		chain = append(chain, limiter.Handler)
	}
	guard := middleware.NewGuard(store, routeCfg, log)
	chain = append(chain, guard.Handler)

	server := api.NewServer(store, routeCfg, log)
	handler := httputil.Chain(chain...)(server)

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthRouter := mux.NewRouter()
	api.NewHealthHandler(map[string]api.HealthCheck{
		"database": func(ctx context.Context) error { return db.PingContext(ctx) },
		"redis": func(ctx context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Ping(ctx).Err()
		},
	}).Register(func(path string, h http.HandlerFunc) {
		healthRouter.HandleFunc(path, h)
	})
	if cfg.Observability.MetricsEnabled {
		healthRouter.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthRouter,
	}

	go func() {
		log.Info("health server listening", "addr", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("health server failed")
		}
	}()

	go func() {
		log.Info("gatekeeper listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("server shutdown incomplete")
	}
	if err := healthServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("health server shutdown incomplete")
	}
	log.Info("stopped")
}
