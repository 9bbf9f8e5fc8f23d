package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projledger/backend/internal/application/billing"
	"github.com/projledger/backend/internal/application/financials"
	"github.com/projledger/backend/internal/application/identity"
	"github.com/projledger/backend/internal/application/project"
	"github.com/projledger/backend/internal/infrastructure/auth"
	"github.com/projledger/backend/internal/infrastructure/config"
	"github.com/projledger/backend/internal/infrastructure/event"
	"github.com/projledger/backend/internal/infrastructure/lock"
	"github.com/projledger/backend/internal/infrastructure/logger"
	"github.com/projledger/backend/internal/infrastructure/migration"
	"github.com/projledger/backend/internal/infrastructure/persistence"
	"github.com/projledger/backend/internal/infrastructure/telemetry"
	"github.com/projledger/backend/internal/interfaces/http/handler"
	"github.com/projledger/backend/internal/interfaces/http/middleware"
	"github.com/projledger/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting projledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry
	provider, err := telemetry.NewProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		SpanProfiles:      cfg.Telemetry.SpanProfiles && cfg.Profiling.Enabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	otlpCore := provider.ZapCore(logger.ParseLevel(cfg.Log.Level))
	log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, otlpCore)
	}))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiling.Enabled,
		ServerAddress:   cfg.Profiling.ServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:  cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := migrateUp(db, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Redis backs the roll-up lock and the token blacklist when enabled
	lockOpts := lock.Options{TTL: cfg.Rollup.LockTTL, Wait: cfg.Rollup.LockWait, Backoff: cfg.Rollup.LockBackoff}
	var (
		redisClient *redis.Client
		locker      lock.Locker
		blacklist   auth.TokenBlacklist
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		locker = lock.NewRedisLocker(redisClient, lock.KeyPrefix, lockOpts)
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		locker = lock.NewLocalLocker(lockOpts)
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis disabled, roll-up locks and revoked tokens are process-local")
	}

	// Repositories
	txManager := persistence.NewTxManager(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	teamRepo := persistence.NewGormTeamRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	timesheetRepo := persistence.NewGormTimesheetRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	totalsReader := persistence.NewGormTotalsReader(db.DB)
	sequence := persistence.NewGormNumberSequence(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	staleHandler := financials.NewStaleFinancialsHandler(log)
	eventBus.Subscribe(staleHandler, staleHandler.EventTypes()...)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	rollupMetrics, err := telemetry.NewRollupMetrics(provider.Meter("projledger/rollup"))
	if err != nil {
		log.Fatal("Failed to create roll-up metrics", zap.Error(err))
	}
	rollupService := financials.NewRollupService(projectRepo, totalsReader, txManager, financials.NewProjectLocker(locker, log), log)
	rollupService.SetEventPublisher(eventBus)
	rollupService.SetMetrics(rollupMetrics)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identity.NewAuthService(userRepo, teamRepo, jwtService, blacklist, txManager, log)
	authService.SetEventPublisher(eventBus)
	teamService := identity.NewTeamService(teamRepo, userRepo, log)
	teamService.SetEventPublisher(eventBus)

	projectService := project.NewProjectService(projectRepo, teamService, rollupService, log)
	taskService := project.NewTaskService(taskRepo, projectRepo, log)
	timesheetService := project.NewTimesheetService(timesheetRepo, projectRepo, taskRepo, txManager, log)

	documentService := billing.NewDocumentService(documentRepo, sequence, projectRepo, rollupService, log)
	documentService.SetEventPublisher(eventBus)
	expenseService := billing.NewExpenseService(expenseRepo, sequence, projectRepo, rollupService, log)
	expenseService.SetEventPublisher(eventBus)

	// HTTP engine
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	httpMetrics, err := middleware.HTTPMetrics(provider.Meter("projledger/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(cfg.Telemetry.ServiceName),
		middleware.SpanErrorMarker(),
		httpMetrics,
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateBurst)
	go authLimiter.Run(limiterCtx)

	checks := []handler.HealthCheck{{
		Name:  "database",
		Check: db.Ping,
	}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	authHandler := handler.NewAuthHandler(authService, middleware.RateLimit(authLimiter))
	r := router.NewRouter(engine, router.WithProtection(
		middleware.JWTAuth(middleware.JWTConfig{Tokens: jwtService, Blacklist: blacklist, Logger: log}),
		middleware.TeamContext(teamService, log),
		middleware.SpanIdentity(),
		middleware.ProfilingLabels(),
	))
	r.RegisterPublic(handler.NewHealthHandler(version, checks...), authHandler)
	r.Register(
		authHandler,
		handler.NewTeamHandler(teamService),
		handler.NewProjectHandler(projectService),
		handler.NewTaskHandler(taskService),
		handler.NewTimesheetHandler(timesheetService),
		handler.NewExpenseHandler(expenseService),
	)
	for _, documents := range handler.DocumentRegistrars(documentService) {
		r.Register(documents)
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopLimiter()
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	// Last, so the shutdown logs above are still exported
	if err := provider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateUp applies pending embedded migrations. The migrator is not closed
// because that would also close the shared connection pool.
func migrateUp(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	return m.Up()
}
