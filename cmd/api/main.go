package main

import (
	"context"
	"log"
	"time"

	"moodchat/config"
	"moodchat/internal/handler"
	"moodchat/internal/presence"
	"moodchat/internal/redis"
	"moodchat/internal/repository"
	"moodchat/internal/server"
	"moodchat/internal/services"
	"moodchat/internal/websocket"
	"moodchat/pkg/database"
	"moodchat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	// Database
	database.Connect(cfg)
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis
	redis.Initialize(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	redisClient := redis.GetClient()
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())
	lastSeen := redis.NewLastSeenCache(redisClient, 7*24*time.Hour)

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	msgRepo := repository.NewMessageRepository(database.DB)

	// Presence and realtime plumbing
	registry := presence.NewRegistry()
	hub := websocket.NewHub()
	gateway := websocket.NewGateway(registry, hub, userRepo, lastSeen, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo, registry, lastSeen)
	router := services.NewMessageRouter(msgRepo, registry, hub, l)
	tracker := services.NewStatusTracker(msgRepo, userRepo, registry, hub)
	ledger := services.NewReactionLedger(msgRepo, hub)

	// Handlers
	handlers := &server.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(userService),
		Message: handler.NewMessageHandler(router, ledger),
		WS:      websocket.NewHandler(authService, hub, gateway, router, tracker, ledger, limiter, l),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
