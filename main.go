package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/felixzhu97/whatschat-sub002/config"
	"github.com/felixzhu97/whatschat-sub002/db"
	"github.com/felixzhu97/whatschat-sub002/handlers"
	"github.com/felixzhu97/whatschat-sub002/middleware"
	"github.com/felixzhu97/whatschat-sub002/services"
	"github.com/felixzhu97/whatschat-sub002/store"
	"github.com/felixzhu97/whatschat-sub002/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize logger
	logger := utils.NewLogger(cfg.Environment)

	// Connect to database
	database, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Initialize Redis client
	redisClient, err := store.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisClient.Close()

	// Initialize stores
	users := store.NewUserStore(database)
	conversations := store.NewConversationStore(database)
	messages := store.NewMessageStore(database)
	statuses := store.NewStatusStore(redisClient, cfg.StatusTTL)

	// Initialize services
	registry := services.NewPresenceRegistry(logger)
	authenticator := services.NewAuthenticator(cfg.JWTSecret, users, logger)
	messageRelay := services.NewMessageRelay(registry, conversations, messages, logger)
	eventRelay := services.NewEventRelay(registry, conversations, messages, statuses, users, cfg.StatusTTL, logger)
	callRelay := services.NewCallSignalingRelay(registry, logger)

	// Initialize gateway
	gateway := handlers.NewGateway(authenticator, registry, messageRelay, eventRelay, callRelay, users, cfg.SendQueueSize, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"service":     "realtime-service",
			"connections": registry.Count(),
			"timestamp":   time.Now(),
		})
	})

	// Presence endpoint
	presenceHandler := handlers.NewPresenceHandler(registry)
	router.GET("/presence/online", presenceHandler.GetOnlineUsers)

	// WebSocket endpoint
	router.GET("/ws", gateway.HandleWS)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Realtime Service", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
