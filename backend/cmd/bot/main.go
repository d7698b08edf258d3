package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rico-bot/backend/internal/adapter"
	"rico-bot/backend/internal/agent"
	"rico-bot/backend/internal/discord"
	"rico-bot/backend/internal/identity"
	"rico-bot/backend/internal/memory"
	"rico-bot/backend/internal/store"
	"rico-bot/backend/internal/tools"
	"rico-bot/backend/pkg/config"
	"rico-bot/backend/pkg/logger"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func main() {
	// Load configuration first so the logger can honor LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting Discord bot...")

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}
	if cfg.DiscordBotToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is required")
	}

	ctx := context.Background()

	// Pick the persistence backend. Redis when configured, otherwise an
	// in-process store so the bot still runs without infrastructure.
	var st store.Store
	if cfg.UseRedis {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisStore.Close()
		st = redisStore
		log.Info("Using Redis store", zap.String("url", cfg.RedisURL))
	} else {
		st = store.NewMemStore()
		log.Info("Using in-memory store")
	}

	llmAdapter := adapter.NewLLMAdapter(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ModelID)

	var embedder adapter.Embedder
	if cfg.OpenAIAPIKey != "" {
		embedder = adapter.NewOpenAIEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, 1536)
		log.Info("Embedding provider enabled", zap.String("model", cfg.EmbeddingModel))
	} else {
		log.Warn("No API key configured, semantic search falls back to keyword matching")
	}

	memoryManager := memory.NewManager(st, embedder)
	identityRegistry := identity.NewRegistry(cfg.CreatorIDs)

	toolRegistry := tools.NewRegistry(tools.Deps{
		Memory:   memoryManager,
		Identity: identityRegistry,
		Config:   cfg,
	})
	log.Info("Tool registry initialized", zap.Int("tools", len(toolRegistry.Names())))

	bot := agent.New(llmAdapter, toolRegistry, memoryManager)

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatal("Failed to create Discord session", zap.Error(err))
	}

	messageHandler := discord.NewHandler(bot, llmAdapter, memoryManager, identityRegistry, cfg)
	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		messageHandler.HandleMessage(s, m)
	})

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	if err := dg.Open(); err != nil {
		log.Fatal("Failed to open Discord connection", zap.Error(err))
	}
	defer dg.Close()

	log.Info("Discord bot is running. Press CTRL-C to exit.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-quit

	log.Info("Shutting down Discord bot...")
}
