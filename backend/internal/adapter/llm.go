package adapter

import (
	"context"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "rico-bot/backend/pkg/errors"
	"rico-bot/backend/pkg/logger"
)

// ApologyMessage is substituted when the model returns nothing usable
// (empty completion or safety block). The caller never sees an empty answer.
const ApologyMessage = "Sorry, I couldn't generate a response."

// Message is one turn in a chat exchange. Role is one of
// system/user/assistant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tunes a single chat call. Zero values fall back to defaults.
type ChatOptions struct {
	Temperature float32
	MaxTokens   int
}

// LLMAdapter handles communication with an OpenAI-compatible endpoint
type LLMAdapter struct {
	client *openai.Client
	model  string
	mu     sync.RWMutex // Protects model field for concurrent access
	logger *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter
func NewLLMAdapter(baseURL, apiKey, modelID string) *LLMAdapter {
	// Proxies such as LiteLLM accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/")

	return &LLMAdapter{
		client: openai.NewClientWithConfig(config),
		model:  modelID,
		logger: logger.Get(),
	}
}

// SetModel updates the model used by this adapter
func (a *LLMAdapter) SetModel(model string) {
	if model != "" {
		a.mu.Lock()
		a.model = model
		a.mu.Unlock()
		a.logger.Debug("LLM adapter model updated", zap.String("model", model))
	}
}

// GetModel returns the current model
func (a *LLMAdapter) GetModel() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// Chat sends an ordered message list to the model and returns its text.
// A single transport failure propagates as an error; an empty or blocked
// completion is replaced by ApologyMessage. No retry is attempted.
func (a *LLMAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (string, error) {
	temperature := float32(0.7)
	maxTokens := 500
	if opts != nil {
		if opts.Temperature > 0 {
			temperature = opts.Temperature
		}
		if opts.MaxTokens > 0 {
			maxTokens = opts.MaxTokens
		}
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	a.mu.RLock()
	currentModel := a.model
	a.mu.RUnlock()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       currentModel,
		Messages:    chatMessages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.String("model", currentModel),
		)
		return "", apperrors.NewBaseError(apperrors.ErrorTypeLLM, "chat completion failed", err)
	}

	if len(resp.Choices) == 0 {
		a.logger.Warn("LLM returned no choices", zap.String("model", currentModel))
		return ApologyMessage, nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		a.logger.Warn("LLM returned empty content",
			zap.String("model", currentModel),
			zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		)
		return ApologyMessage, nil
	}

	a.logger.Debug("LLM response generated",
		zap.String("model", currentModel),
		zap.Int("length", len(content)),
	)

	return content, nil
}
