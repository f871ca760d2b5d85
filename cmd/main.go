package main

import (
	"context"
	"errors"
	"flag"
	"magic-villa-api/config"
	"magic-villa-api/internal/handler"
	"magic-villa-api/internal/obs"
	"magic-villa-api/internal/ports"
	"magic-villa-api/internal/repository"
	"magic-villa-api/internal/security"
	"magic-villa-api/internal/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configPath := flag.String("config", "config.yaml", "путь к конфигурации")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// логгер еще не настроен
		bootstrap, _ := zap.NewProduction()
		var configErr *config.ConfigurationError
		if errors.As(err, &configErr) {
			bootstrap.Fatal("конфигурация неполная", zap.Strings("missing", configErr.Missing))
		}
		bootstrap.Fatal("ошибка загрузки конфигурации", zap.Error(err))
	}

	logger, err := obs.NewLogger(cfg.Log, cfg.App)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	tracing, err := obs.SetupTracing(ctx, &cfg.OTEL, cfg.App)
	if err != nil {
		logger.Fatal("ошибка настройки OpenTelemetry", zap.Error(err))
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			logger.Warn("ошибка остановки OpenTelemetry", zap.Error(err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.DatabaseConfig)
	if err != nil {
		logger.Fatal("не удалось подключиться к БД", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("ошибка при закрытии БД", zap.Error(err))
		}
	}()

	healthChecks := []func(context.Context) error{db.PingContext}

	// без Redis отозванные цепочки не проверяются в middleware,
	// access-токены живут до своего exp
	var chainCache ports.ChainCache
	if cfg.RedisConfig.Addr != "" {
		redisClient, err := config.SetupRedis(&cfg.RedisConfig)
		if err != nil {
			logger.Fatal("ошибка подключения к Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("ошибка при закрытии Redis", zap.Error(err))
			}
		}()
		chainCache = repository.NewChainCacheRepository(redisClient, cfg.JWT.AccessTokenTTL())
		healthChecks = append(healthChecks, func(ctx context.Context) error {
			return redisClient.Client.Ping(ctx).Err()
		})
	}

	tokenStore := newTokenStore(cfg, db, logger)
	userRepo := repository.NewUserRepository(db)
	jwtService := security.NewJWTService(&cfg.JWT)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewRotationMetrics(registry)

	engine := service.NewTokenEngine(tokenStore, userRepo, jwtService, service.EngineConfig{
		RefreshTokenTTL: jwtService.RefreshTokenTTL(),
	}, logger.Named("engine")).WithMetrics(metrics)
	if chainCache != nil {
		engine.WithChainCache(chainCache)
	}
	authService := service.NewAuthenticationService(engine, userRepo, logger.Named("auth"))

	authHandler := handler.NewAuthenticationHandler(authService, handler.CookieSettings{
		Secure:          cfg.Cookies.Secure,
		SameSite:        cfg.Cookies.SameSiteMode(),
		AccessTokenTTL:  jwtService.AccessTokenTTL(),
		RefreshTokenTTL: jwtService.RefreshTokenTTL(),
	}, logger.Named("http"))

	srv, router := config.SetupServer(cfg.ServerAddr)
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	router.Get("/healthz", obs.HealthHandler(healthChecks...))
	router.Handle("/metrics", obs.MetricsHandler(registry))

	handler.SetupAuthRoutes(router, authHandler, security.JWTMiddleware(jwtService, chainCache, logger.Named("jwt")))
	srv.Handler = obs.HTTPHandler(router, "magic-villa-api")

	runServer(ctx, srv, logger)
}

func newTokenStore(cfg *config.AppConfig, db *config.Database, logger *zap.Logger) ports.TokenStore {
	if cfg.TokenStore.Driver == config.TokenStoreMemory {
		logger.Warn("refresh токены хранятся в памяти, сессии не переживут рестарт")
		return repository.NewMemoryTokenStore()
	}
	return repository.NewRefreshTokenRepository(db)
}

func runServer(ctx context.Context, server *http.Server, logger *zap.Logger) {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("сервер запущен", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ошибка работы сервера", zap.Error(err))
		}
	case sig := <-signalChannel:
		logger.Info("получен сигнал остановки работы сервера", zap.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		logger.Error("ошибка при остановке сервера", zap.Error(err))
	} else {
		logger.Info("сервер успешно остановлен")
	}
}
