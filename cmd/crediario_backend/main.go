package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/crediario_backend/internal/core/ports/repositories"
	"github.com/SscSPs/crediario_backend/internal/core/services"
	"github.com/SscSPs/crediario_backend/internal/handlers"
	"github.com/SscSPs/crediario_backend/internal/middleware"
	"github.com/SscSPs/crediario_backend/internal/platform/config"
	"github.com/SscSPs/crediario_backend/internal/platform/events"
	"github.com/SscSPs/crediario_backend/internal/platform/locker"
	"github.com/SscSPs/crediario_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/crediario_backend/internal/repositories/memory"
	"github.com/SscSPs/crediario_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const eventBufferSize = 1024

// @title Crediario Backend API
// @version 1.0
// @description Installment credit, reservations and stock ledger for the store's clerks.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := setupStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	var redisClient *redis.Client
	keyedLocker := locker.NewLocal(cfg.LockMaxWait)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to connect to Redis", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		keyedLocker = locker.NewRedis(redisClient, cfg.LockTTL, cfg.LockMaxWait)
		logger.Info("Using Redis for locks and rate limiting", slog.String("addr", cfg.RedisAddr))
	}

	var publisher services.ServiceOption = services.WithPublisher(events.NoopPublisher{})
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, eventBufferSize, logger)
		producer.Start()
		defer producer.Close()
		publisher = services.WithPublisher(producer)
		logger.Info("Publishing ledger events to Kafka", slog.String("topic", cfg.KafkaTopic))
	}

	container := services.NewServiceContainer(cfg, repos, services.WithLocker(keyedLocker), publisher)

	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		services.NewSideEffectWorker(container.Reconciliation, cfg.SideEffectRetryInterval, logger).Run(ctx)
	}()

	writeLimiter, err := middleware.NewLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		logger.Error("Failed to create rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")

	// Global middleware (cors, logging, metrics, recovery)
	r.Use(cors.New(corsConfig), middleware.StructuredLoggingMiddleware(logger), middleware.MetricsMiddleware(), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, writeLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	workers.Wait()
	logger.Info("Server stopped")
}

// setupStore opens the configured store and returns its repositories with a
// cleanup func.
func setupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using the in-memory store; data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		database.ClosePgxPool(dbPool, logger)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool, logger) }, nil
}
