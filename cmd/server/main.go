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
	ticketapp "github.com/pos/backend/internal/application/ticket"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/pos/backend/internal/domain/ticket"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/infrastructure/cache"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/pos/backend/internal/infrastructure/event"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/infrastructure/persistence"
	"github.com/pos/backend/internal/infrastructure/telemetry"
	"github.com/pos/backend/internal/interfaces/http/handler"
	"github.com/pos/backend/internal/interfaces/http/middleware"
	"github.com/pos/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			POS Ticket API
//	@version		1.0
//	@description	Ticket calculation and mutation engine for restaurant point of sale

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(baseLog)

	ctx := context.Background()

	// Telemetry providers are no-ops unless enabled in config
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
		Level:             zapcore.InfoLevel,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	log := loggerProvider.Bridge(baseLog)

	profiling := cfg.Telemetry.Profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           profiling.Enabled,
		ServerAddress:     profiling.ServerAddress,
		ApplicationName:   cfg.App.Name,
		BasicAuthUser:     profiling.BasicAuthUser,
		BasicAuthPassword: profiling.BasicAuthPassword,
		ProfileAllocs:     profiling.ProfileAllocs,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting POS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.SlowQueryThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.SlowQueryThreshold,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		log.Info("Schema migrated")
	}
	log.Info("Database connected successfully")

	poolMetrics, err := telemetry.RegisterDBPoolMetrics(meterProvider.Meter(telemetry.MeterName), poolStats(db))
	if err != nil {
		log.Fatal("Failed to register database pool metrics", zap.Error(err))
	}
	defer func() { _ = poolMetrics.Unregister() }()

	// Menu lookups go through a read-through cache
	var catalog ticket.MenuCatalog = persistence.NewGormMenuCatalog(db.DB)
	if cfg.Catalog.CacheEnabled {
		menuCache, err := cache.NewMenuCacheFactory(cfg.Redis, cfg.Catalog, cache.WithLogger(log)).CreateCache()
		if err != nil {
			log.Fatal("Failed to create menu cache", zap.Error(err))
		}
		defer menuCache.Close()
		catalog = cache.NewCachedMenuCatalog(catalog, menuCache, cfg.Catalog.CacheTTL, log)
	}

	clock := shared.SystemClock()
	ticketOpts := []ticket.Option{ticket.WithRounding(valueobject.NewRounding(cfg.Ticket.Decimals))}

	ticketRepo := persistence.NewGormTicketRepository(db.DB, append([]ticket.Option{ticket.WithClock(clock)}, ticketOpts...)...)
	departmentRepo := persistence.NewGormDepartmentRepository(db.DB, clock)
	numeratorRepo := persistence.NewGormNumeratorRepository(db.DB, clock)

	autoRound, err := decimal.NewFromString(cfg.Ticket.AutoRoundValue)
	if err != nil {
		log.Fatal("Invalid ticket.auto_round_value", zap.String("value", cfg.Ticket.AutoRoundValue), zap.Error(err))
	}

	ticketService := ticketapp.NewService(
		ticketRepo,
		departmentRepo,
		catalog,
		numeratorRepo,
		ticketapp.Config{
			AutoRoundValue:    autoRound,
			Currency:          valueobject.Currency(cfg.Ticket.Currency),
			DefaultDepartment: cfg.Ticket.DefaultDepartment,
		},
		clock,
		log,
		ticketOpts...,
	)

	// Ticket events feed the activity log and the ticket metrics
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewTicketActivityLogger(log))

	ticketMetrics, err := telemetry.NewTicketMetrics(meterProvider.Meter(telemetry.MeterName))
	if err != nil {
		log.Fatal("Failed to create ticket metrics", zap.Error(err))
	}
	eventBus.Subscribe(ticketMetrics)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	ticketService.SetEventPublisher(eventBus)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()

	// Order matters: the request id and recovery wrap everything, the span
	// is started before SpanAttributes reads it back.
	engine.Use(
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.App.Name,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:   profiler.IsEnabled(),
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		}),
		middleware.CORSWithConfig(corsConfig(cfg.HTTP.CORSOrigins)),
		middleware.SecureWithConfig(securityConfig(cfg)),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)
	if cfg.HTTP.RateLimit > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst, 0)))
	}
	engine.GET("/ready", readyHandler(db))

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log

	r := router.NewRouter(engine, router.WithMiddleware(middleware.JWTAuthMiddlewareWithConfig(jwtConfig)))
	r.Register(handler.NewTicketHandler(ticketService))
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Flush telemetry last so shutdown logs and spans are exported
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		baseLog.Error("Error stopping profiler", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down logger provider", zap.Error(err))
	}
}

func poolStats(db *persistence.Database) telemetry.PoolStatsFunc {
	return func() (telemetry.PoolStats, error) {
		s, err := db.Stats()
		if err != nil {
			return telemetry.PoolStats{}, err
		}
		return telemetry.PoolStats{
			MaxOpen:      s.MaxOpenConnections,
			Open:         s.OpenConnections,
			InUse:        s.InUse,
			Idle:         s.Idle,
			WaitCount:    s.WaitCount,
			WaitDuration: s.WaitDuration,
		}, nil
	}
}

func corsConfig(origins []string) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowOrigins = origins
	return c
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	c := middleware.DefaultSecurityConfig()
	c.HSTSEnabled = cfg.IsProduction()
	return c
}

// readyHandler reports whether the database answers
func readyHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unavailable",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
