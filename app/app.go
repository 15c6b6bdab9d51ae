// File: app/app.go
package app

import (
	"context"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/security"
	"go-auth-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const signingKeyID = "auth-service-key-1"

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate("db/migrations"); err != nil {
		logger.Log.Fatalf("Error running database migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	// The signing key pair is loaded once and shared read-only by every
	// request worker for the life of the process.
	jwtCfg := config.AppConfig.JWT
	keys, err := security.LoadKeyPair(jwtCfg.PrivateKeyFile, jwtCfg.PublicKeyFile, signingKeyID)
	if err != nil {
		logger.Log.Fatalf("Error loading signing keys: %v", err)
	}

	// --- Wiring All Layers Together ---
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	tokenService := service.NewTokenService(keys, userRepo, tokenRepo,
		jwtCfg.Issuer, jwtCfg.AccessTokenTTLMs, jwtCfg.RefreshTokenTTLMs)

	rlCfg := config.AppConfig.RateLimit
	limiter := service.NewRateLimiterService(redisClient, service.RateLimitConfig{
		LoginMaxRequests:   rlCfg.LoginMaxRequests,
		LoginWindow:        time.Duration(rlCfg.LoginWindowSeconds) * time.Second,
		RefreshMaxRequests: rlCfg.RefreshMaxRequests,
		RefreshWindow:      time.Duration(rlCfg.RefreshWindowSeconds) * time.Second,
	})
	revocation := service.NewRevocationService(redisClient)

	authService := service.NewAuthService(userRepo, tokenService)
	refreshService := service.NewRefreshService(database, tokenRepo, userRepo, tokenService, limiter, revocation)

	authHandler := handler.NewAuthHandler(authService, refreshService, limiter)
	sessionHandler := handler.NewSessionHandler(refreshService)
	jwksHandler := handler.NewJWKSHandler(keys)
	authMW := handler.NewAuthMiddleware(tokenService, revocation)

	r := router.NewRouter(authHandler, sessionHandler, jwksHandler, authMW)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
