package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vecinus/vecinus/config"
	"github.com/Vecinus/vecinus/handler"
	"github.com/Vecinus/vecinus/middleware"
	"github.com/Vecinus/vecinus/pkg/logger"
	"github.com/Vecinus/vecinus/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize services
	minioSvc, err := service.NewMinioService(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize MINIO service", "error", err)
		os.Exit(1)
	}

	// Ensure bucket exists
	if err := minioSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure MINIO bucket", "error", err)
		os.Exit(1)
	}

	generatorSvc := service.NewGeneratorService(&cfg.Generator)
	chatbotSvc := service.NewChatbotService(&cfg.Chatbot)

	// Initialize acta store with config and demo content
	service.InitActaStore(&cfg.Store)
	seeded := make(map[string]bool)
	for _, user := range cfg.Users {
		if seeded[user.Community] {
			continue
		}
		seeded[user.Community] = true
		service.GetActaStore().Seed(service.DemoActas(user.Community))
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	actasHandler := handler.NewActasHandler(minioSvc, generatorSvc)
	chatbotHandler := handler.NewChatbotHandler(chatbotSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(corsMiddleware())           // CORS
	router.Use(middleware.RateLimit(cfg.Server.RateLimitPerMinute, time.Minute))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.GET("/actas", actasHandler.List)
		protected.GET("/actas/:id", actasHandler.Get)
		protected.POST("/comunities/:id/chatbot", chatbotHandler.Ask)
		protected.POST("/comunities/:id/documents", chatbotHandler.IngestDocument)
	}

	// Acta creation requires the presidente role
	presidente := protected.Group("/")
	presidente.Use(middleware.RequirePresidente())
	{
		presidente.POST("/actas/generate", actasHandler.Generate)
		presidente.POST("/actas/publish", actasHandler.Publish)
		presidente.POST("/actas/:id/sign", actasHandler.Sign)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second, // generation awaits the AI collaborator
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
