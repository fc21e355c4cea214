// @title Cats API
// @version 1.0
// @description Cats and users backed by a MongoDB document store.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/cats-backend/config"
	_ "github.com/NomadCrew/cats-backend/docs"
	"github.com/NomadCrew/cats-backend/handlers"
	"github.com/NomadCrew/cats-backend/internal/auth"
	"github.com/NomadCrew/cats-backend/logger"
	"github.com/NomadCrew/cats-backend/models"
	"github.com/NomadCrew/cats-backend/router"
	"github.com/NomadCrew/cats-backend/services"
	"github.com/NomadCrew/cats-backend/store/mongodb"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewTokenService(cfg.Server.JwtSecretKey, time.Duration(cfg.Server.JwtTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	deps := router.Dependencies{
		Config:       cfg,
		JWTValidator: tokens,
	}

	var db services.Pinger
	var indexErr error
	if cfg.Database.Enabled {
		client, err := mongodb.Connect(context.Background(), cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(ctx); err != nil {
				log.Errorw("Failed to close database connection", "error", err)
			}
		}()
		db = client

		timeout := mongodb.WithOperationTimeout(cfg.Database.OperationTimeout())
		cats := mongodb.NewRepository[models.Cat](client.Database(), timeout)
		users := mongodb.NewRepository[models.User](client.Database(), timeout)

		syncCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		indexErr = models.SyncIndexes(syncCtx, cats, users)
		cancel()
		if indexErr != nil {
			log.Warnw("Index synchronization failed, continuing in degraded mode", "error", indexErr)
		}

		deps.CatHandler = handlers.NewCatHandler(cats)
		deps.UserHandler = handlers.NewUserHandler(users, tokens)
	} else {
		log.Warn("Database disabled, document routes are not registered")
	}

	var redisClient redis.Cmdable
	if cfg.Redis.Enabled {
		client := newRedisClient(cfg.Redis)
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warnw("Redis unreachable at startup, rate limiting fails open", "error", err)
		}
		cancel()
		redisClient = client
		deps.Redis = client
	}

	healthService := services.NewHealthService(db, redisClient, cfg.Server.Version)
	healthService.SetIndexStatus(indexErr)
	deps.HealthHandler = handlers.NewHealthHandler(healthService, cfg)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router.SetupRouter(deps),
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSecond) * time.Second,
	}

	go func() {
		log.Infow("Starting server", "address", srv.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("Shutting down server", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	log.Info("Server exited")
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}
