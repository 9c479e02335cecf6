package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todo/api/handler"
	"github.com/fastygo/todo/internal/config"
	"github.com/fastygo/todo/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/todo/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/todo/internal/infrastructure/redis"
	sqliteInfra "github.com/fastygo/todo/internal/infrastructure/sqlite"
	"github.com/fastygo/todo/internal/middleware"
	"github.com/fastygo/todo/internal/router"
	"github.com/fastygo/todo/internal/services/lifecycle"
	"github.com/fastygo/todo/pkg/httpcontext"
	"github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/repository/postgres"
	redisRepo "github.com/fastygo/todo/repository/redis"
	"github.com/fastygo/todo/repository/sqlite"
	todoUC "github.com/fastygo/todo/usecase/todo"
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

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	taskRepo, storeProbe := openStore(appCtx, cfg, manager, zapLogger)
	probes := []monitor.Probe{storeProbe}

	if cfg.Redis.URL != "" {
		taskRepo, probes = withCache(appCtx, cfg, manager, zapLogger, taskRepo, probes)
	}

	mon := monitor.New(cfg.Health.Interval, zapLogger.Named("monitor"), probes...)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	todoUseCase := todoUC.New(taskRepo, zapLogger)
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Todo:   apiHandler.NewTodoHandler(todoUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
		Page:   apiHandler.NewPageHandler(todoUseCase, ctxAdapter, zapLogger),
	}
	handler := router.New(handlers, middleware.CORS(), middleware.AccessLog(zapLogger.Named("http")))

	server := &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
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

// openStore connects the backend selected by DATABASE_URL, applies its
// migrations and registers its shutdown hook.
func openStore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) (repository.TaskRepository, monitor.Probe) {
	driver, err := cfg.Database.Driver()
	if err != nil {
		zapLogger.Fatal("unsupported database", zap.Error(err))
	}

	switch driver {
	case config.DriverSQLite:
		db, err := sqliteInfra.Open(cfg.Database.SQLitePath(), zapLogger)
		if err != nil {
			zapLogger.Fatal("sqlite open failed", zap.Error(err))
		}
		manager.Register("sqlite", func(ctx context.Context) error {
			return db.Close()
		})
		return sqlite.NewTaskRepository(db), monitor.Probe{Name: "sqlite", Ping: db.PingContext}

	default:
		if err := pgInfra.RunMigrations(cfg.Database.URL, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		return postgres.NewTaskRepository(pool), monitor.Probe{Name: "postgresql", Ping: pool.Ping}
	}
}

// withCache wraps repo with the Redis read cache. An unreachable Redis at
// startup leaves the cache disabled.
func withCache(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger, repo repository.TaskRepository, probes []monitor.Probe) (repository.TaskRepository, []monitor.Probe) {
	redisClient, err := redisInfra.NewClient(ctx, cfg.Redis)
	if err != nil {
		zapLogger.Warn("redis unavailable, cache disabled", zap.Error(err))
		return repo, probes
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})
	zapLogger.Info("redis cache enabled", zap.Duration("ttl", cfg.Redis.TTL))

	repo = redisRepo.NewCachedTaskRepository(repo, redisClient, cfg.Redis.TTL, zapLogger.Named("cache"))
	probes = append(probes, monitor.Probe{
		Name: "redis",
		Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})
	return repo, probes
}
