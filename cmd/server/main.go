package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-coupon/internal/adapter"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/application"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/config"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/events"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-coupon/internal/repository"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/auth"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/database"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/health"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/kafka"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/logger"
	"github.com/Kilat-Pet-Delivery/service-coupon/pkg/middleware"
)

const serviceName = "service-coupon"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
		zap.String("default_role", string(cfg.DefaultRole)),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := repository.AutoMigrate(db); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		if err := repository.SeedDefaultCoupons(context.Background(), db); err != nil {
			zapLogger.Fatal("failed to seed coupons", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.MigrationURL(), cfg.MigrationsPath, zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.TTL)

	// Initialize event publisher
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer kafkaProducer.Close()
		publisher = events.NewKafkaPublisher(kafkaProducer, cfg.KafkaConfig.TopicPrefix, zapLogger)
	} else {
		zapLogger.Info("no kafka brokers configured, lifecycle events disabled")
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serviceMetrics := metrics.New(registry)

	// Initialize repositories and identity provider
	couponRepo := repository.NewGormCouponRepository(db)
	accountRepo := repository.NewGormAccountRepository(db)
	identity := adapter.NewLocalIdentityProvider(accountRepo, adapter.NewBcryptHasher(cfg.BcryptCost), zapLogger)

	// Initialize application services
	couponService := application.NewCouponService(couponRepo, publisher, serviceMetrics, zapLogger)
	authService := application.NewAuthService(identity, jwtManager, publisher, serviceMetrics, cfg.DefaultRole, zapLogger)

	// Initialize HTTP handlers
	couponHandler := handler.NewCouponHandler(couponService)
	authHandler := handler.NewAuthHandler(authService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(serviceMetrics.Middleware())

	// Register health check and metrics routes
	healthHandler := health.NewHandler(serviceName, func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", serviceMetrics.Handler())

	// Register API routes
	api := router.Group("/api")
	couponHandler.RegisterRoutes(api, jwtManager)
	authHandler.RegisterRoutes(api)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down " + serviceName + "...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zapLogger.Info(serviceName + " stopped")
}
