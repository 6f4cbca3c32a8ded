package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/Daniil-Sakharov/hockey-project-sub001/api/handler"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/auth"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/config"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/monitor"
	pgInfra "github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/postgres"
	redisInfra "github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/redis"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/middleware"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/router"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/services/lifecycle"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/httpcontext"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/logger"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/metrics"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository/postgres"
	redisRepo "github.com/Daniil-Sakharov/hockey-project-sub001/repository/redis"
	"github.com/Daniil-Sakharov/hockey-project-sub001/usecase"
	accountUC "github.com/Daniil-Sakharov/hockey-project-sub001/usecase/account"
	authUC "github.com/Daniil-Sakharov/hockey-project-sub001/usecase/auth"
	catalogUC "github.com/Daniil-Sakharov/hockey-project-sub001/usecase/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.WithSignals(context.Background())
	defer cancel()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.RegisterFunc("postgres", pool.Close)

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient)

	mon := monitor.New(cfg.Monitor.Interval, zapLogger).
		Register("postgresql", monitor.PostgresProbe(pool)).
		Register("redis", monitor.RedisProbe(redisClient))
	mon.Start()
	manager.RegisterFunc("monitor", mon.Stop)

	accountRepo := postgres.NewAccountRepository(pool)
	playerRepo := postgres.NewPlayerRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.RefreshTTL)

	issuer := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL)
	recorder := usecase.NewRecorder(eventRepo, zapLogger)

	authUseCase := authUC.New(accountRepo, sessionRepo, issuer, recorder, cfg.JWT.RefreshTTL, zapLogger)
	accountUseCase := accountUC.New(accountRepo, playerRepo, recorder, zapLogger)
	catalogUseCase := catalogUC.New(playerRepo, zapLogger)

	var registry *metrics.Registry
	if cfg.HTTP.EnableMetrics {
		registry = metrics.New()
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, registry, ctxAdapter, zapLogger),
		Account: apiHandler.NewAccountHandler(accountUseCase, ctxAdapter, zapLogger),
		Catalog: apiHandler.NewCatalogHandler(catalogUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
		Pprof:   cfg.HTTP.EnablePprof,
	}
	if registry != nil {
		handlers.Metrics = registry.Handler()
	}

	authMiddleware := middleware.JWTAuth(issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            middleware.Instrument(registry, zapLogger)(r.Handler),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 64 * 1024,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
