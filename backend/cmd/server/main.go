package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rico-bot/backend/internal/adapter"
	"rico-bot/backend/internal/agent"
	"rico-bot/backend/internal/identity"
	"rico-bot/backend/internal/memory"
	"rico-bot/backend/internal/store"
	"rico-bot/backend/internal/tools"
	"rico-bot/backend/pkg/config"
	"rico-bot/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	ctx := context.Background()

	var st store.Store
	if cfg.UseRedis {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisStore.Close()
		st = redisStore
	} else {
		st = store.NewMemStore()
	}

	llmAdapter := adapter.NewLLMAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ModelID)

	var embedder adapter.Embedder
	if cfg.OpenAIAPIKey != "" {
		embedder = adapter.NewOpenAIEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, 1536)
	}

	memoryManager := memory.NewManager(st, embedder)
	identityRegistry := identity.NewRegistry(cfg.CreatorIDs)
	toolRegistry := tools.NewRegistry(tools.Deps{
		Memory:   memoryManager,
		Identity: identityRegistry,
		Config:   cfg,
	})
	bot := agent.New(llmAdapter, toolRegistry, memoryManager)

	router := setupRouter(cfg, bot, memoryManager, identityRegistry, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func setupRouter(cfg *config.Config, bot *agent.Agent, mem *memory.Manager, reg *identity.Registry, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Run one agent turn outside of Discord
		api.POST("/chat", func(c *gin.Context) {
			var req struct {
				Message   string `json:"message" binding:"required"`
				UserID    string `json:"user_id" binding:"required"`
				ChannelID string `json:"channel_id"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			userID, err := strconv.ParseInt(req.UserID, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be numeric"})
				return
			}
			var channelID int64
			if req.ChannelID != "" {
				channelID, err = strconv.ParseInt(req.ChannelID, 10, 64)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "channel_id must be numeric"})
					return
				}
			}

			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(cfg.RequestTimeoutSec)*time.Second)
			defer cancel()

			content, err := bot.Run(ctx, req.Message, reg.Lookup(userID), channelID)
			if err != nil {
				log.Error("Failed to run agent turn", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"content": content})
		})

		// Peek at a user's stored dossier
		api.GET("/memory/user/:id", func(c *gin.Context) {
			userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
				return
			}

			dossier, err := mem.User.Get(c.Request.Context(), userID)
			if err != nil {
				log.Error("Failed to fetch user memory", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memory"})
				return
			}

			c.JSON(http.StatusOK, dossier)
		})
	}

	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
