package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sharkfund/sharkfund-backend/config"
	"github.com/sharkfund/sharkfund-backend/internal/app/controller"
	"github.com/sharkfund/sharkfund-backend/internal/app/repository"
	"github.com/sharkfund/sharkfund-backend/internal/app/service"
	"github.com/sharkfund/sharkfund-backend/internal/db"
	"github.com/sharkfund/sharkfund-backend/internal/router"
	"github.com/sharkfund/sharkfund-backend/internal/scheduler"
	"github.com/sharkfund/sharkfund-backend/pkg/logger"
	"github.com/sharkfund/sharkfund-backend/pkg/mailer"
	"github.com/sharkfund/sharkfund-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting SharkFund Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Connect to the database
	conn, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(conn); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Optional Redis-backed throttle for OTP requests
	var limiter service.RateLimiter
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		limiter = redis.NewOTPRateLimiter(redis.GetClient(), cfg.OTP.RateLimit, cfg.OTP.RateLimitWindow)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(conn)
	otpRepo := repository.NewOTPRepository(conn)

	// Initialize services
	otpMailer := mailer.NewSMTPMailer(&cfg.SMTP)
	recoveryService := service.NewPasswordRecoveryService(
		userRepo,
		otpRepo,
		otpMailer,
		limiter,
		conn,
		cfg.OTP.Expiry,
	)

	// Initialize controllers
	recoveryController := controller.NewPasswordRecoveryController(recoveryService)

	// Start expired OTP cleanup
	cleanup := scheduler.NewOTPCleanupScheduler(otpRepo)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start OTP cleanup scheduler", err)
	}
	defer cleanup.Stop()

	// Setup router
	r := router.NewRouter(recoveryController, cfg)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
