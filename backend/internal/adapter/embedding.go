package adapter

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"rico-bot/backend/internal/constants"
	"rico-bot/backend/pkg/logger"
)

// Embedder converts text into a fixed-length vector. Implementations must
// be deterministic enough to cache by exact text match.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dims() int
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint. Results
// are held in a bounded LRU cache keyed on exact text, and concurrent
// requests for the same text collapse to one upstream call.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dims   int
	cache  *lruCache
	group  singleflight.Group
	logger *zap.Logger
}

// NewOpenAIEmbedder creates an embedder for the given model
func NewOpenAIEmbedder(baseURL, apiKey, model string, dims int) *OpenAIEmbedder {
	if apiKey == "" {
		apiKey = "dummy-key"
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(config),
		model:  model,
		dims:   dims,
		cache:  newLRUCache(constants.EmbeddingCacheSize),
		logger: logger.Get(),
	}
}

// Dims returns the vector dimensionality for this deployment
func (e *OpenAIEmbedder) Dims() int { return e.dims }

// Embed returns the embedding vector for text
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.get(text); ok {
		return vec, nil
	}

	result, err, _ := e.group.Do(text, func() (interface{}, error) {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("embedding response contained no data")
		}
		vec := resp.Data[0].Embedding
		if e.dims > 0 && len(vec) != e.dims {
			return nil, fmt.Errorf("embedding dimensionality mismatch: got %d, want %d", len(vec), e.dims)
		}
		e.cache.put(text, vec)
		return vec, nil
	})
	if err != nil {
		e.logger.Error("Embedding failed", zap.Error(err))
		return nil, err
	}

	return result.([]float32), nil
}

// lruCache is a fixed-capacity LRU map from text to vector
type lruCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type lruEntry struct {
	key string
	vec []float32
}

func newLRUCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry).vec, true
}

func (c *lruCache) put(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*lruEntry).vec = vec
		return
	}
	c.entries[key] = c.order.PushFront(&lruEntry{key: key, vec: vec})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry).key)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
