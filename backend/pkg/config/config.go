package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	apperrors "rico-bot/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string
	LogLevel string

	// Discord
	DiscordBotToken   string
	AllowedGuildIDs   []int64
	AllowedChannelIDs []int64

	// AI
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	ModelID        string
	EmbeddingModel string

	// Store
	UseRedis bool
	RedisURL string

	// Tools
	BraveAPIKey     string
	CodeExecEnabled bool
	FileStorePath   string

	// Identity
	CreatorIDs []int64

	// Request handling
	RequestTimeoutSec int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", ""),
		DiscordBotToken:   getEnv("DISCORD_BOT_TOKEN", ""),
		AllowedGuildIDs:   getEnvIDList("ALLOWED_GUILD_IDS"),
		AllowedChannelIDs: getEnvIDList("ALLOWED_CHANNEL_IDS"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		ModelID:           getEnv("MODEL_ID", "gpt-4o-mini"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		UseRedis:          getEnvBool("USE_REDIS", false),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		BraveAPIKey:       getEnv("BRAVE_API_KEY", ""),
		CodeExecEnabled:   getEnvBool("CODE_EXEC_ENABLED", false),
		FileStorePath:     getEnv("FILE_STORE_PATH", "data_store.txt"),
		CreatorIDs:        getEnvIDList("CREATOR_IDS"),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.ModelID == "" {
		return apperrors.NewBaseError(apperrors.ErrorTypeConfig, "MODEL_ID is required", nil)
	}
	if c.OpenAIBaseURL == "" {
		return apperrors.NewBaseError(apperrors.ErrorTypeConfig, "OPENAI_BASE_URL is required", nil)
	}
	if c.RequestTimeoutSec <= 0 {
		return apperrors.NewBaseError(apperrors.ErrorTypeConfig, "REQUEST_TIMEOUT must be positive", nil)
	}
	// Discord token, API keys and Redis are optional for development
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.EqualFold(value, "true") || value == "1"
	}
	return defaultValue
}

// getEnvIDList parses a comma-separated list of numeric ids, skipping blanks
func getEnvIDList(key string) []int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
