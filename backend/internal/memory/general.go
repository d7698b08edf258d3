package memory

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"rico-bot/backend/internal/adapter"
	"rico-bot/backend/internal/constants"
	"rico-bot/backend/internal/store"
	"rico-bot/backend/pkg/logger"
)

// generalKeyPrefix namespaces general-memory entries in the store
const generalKeyPrefix = "general:memory:"

// SearchResult is one general-memory hit
type SearchResult struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// GeneralMemory is the identity-agnostic, semantically searchable fact
// store. Entries are immutable once written. When an embedder is configured
// search ranks by cosine similarity; otherwise it falls back to a bounded
// linear keyword scan.
type GeneralMemory struct {
	store    store.Store
	embedder adapter.Embedder
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewGeneralMemory creates the general tier; st and embedder may be nil
func NewGeneralMemory(st store.Store, embedder adapter.Embedder) *GeneralMemory {
	return &GeneralMemory{
		store:    st,
		embedder: embedder,
		logger:   logger.Get(),
	}
}

// Add embeds content and stores the content/metadata/vector triple under a
// freshly generated key.
func (g *GeneralMemory) Add(ctx context.Context, content string, metadata map[string]any) error {
	if g.store == nil {
		return nil
	}

	var vector []float32
	if g.embedder != nil {
		vec, err := g.embedder.Embed(ctx, content)
		if err != nil {
			g.logger.Warn("Embedding failed, storing entry without vector", zap.Error(err))
		} else {
			vector = vec
		}
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	key := generalKeyPrefix + uuid.NewString()

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.HSet(ctx, key, "content", content); err != nil {
		return err
	}
	if err := g.store.HSet(ctx, key, "metadata", string(metaJSON)); err != nil {
		return err
	}
	if vector != nil {
		vecJSON, err := json.Marshal(vector)
		if err != nil {
			return err
		}
		if err := g.store.HSet(ctx, key, "vector", string(vecJSON)); err != nil {
			return err
		}
	}
	return nil
}

// Search returns the topK entries most relevant to query
func (g *GeneralMemory) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if g.store == nil {
		return nil, nil
	}
	if topK <= 0 {
		topK = constants.GeneralSearchTopK
	}

	keys, err := g.store.ScanKeys(ctx, generalKeyPrefix, constants.GeneralScanLimit)
	if err != nil {
		return nil, err
	}

	var queryVec []float32
	if g.embedder != nil {
		queryVec, err = g.embedder.Embed(ctx, query)
		if err != nil {
			g.logger.Warn("Query embedding failed, falling back to keyword scan", zap.Error(err))
			queryVec = nil
		}
	}

	var results []SearchResult
	for _, key := range keys {
		fields, err := g.store.HGetAll(ctx, key)
		if err != nil {
			continue
		}
		content := fields["content"]
		var metadata map[string]any
		_ = json.Unmarshal([]byte(fields["metadata"]), &metadata)

		if queryVec != nil {
			var vector []float32
			if err := json.Unmarshal([]byte(fields["vector"]), &vector); err != nil || len(vector) != len(queryVec) {
				continue
			}
			score := cosineSimilarity(queryVec, vector)
			results = append(results, SearchResult{Content: content, Metadata: metadata, Score: score})
			continue
		}

		// Keyword fallback: substring containment against content and the
		// metadata title, each match scored uniformly.
		if keywordMatch(query, content, metadata) {
			results = append(results, SearchResult{Content: content, Metadata: metadata, Score: 1.0})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func keywordMatch(query, content string, metadata map[string]any) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(content), q) {
		return true
	}
	if title, ok := metadata["title"].(string); ok {
		if strings.Contains(strings.ToLower(title), q) {
			return true
		}
	}
	return false
}

func cosineSimilarity(a, b []float32) float64 {
	fa := make([]float64, len(a))
	fb := make([]float64, len(b))
	for i := range a {
		fa[i] = float64(a[i])
		fb[i] = float64(b[i])
	}
	normA := floats.Norm(fa, 2)
	normB := floats.Norm(fb, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	score := floats.Dot(fa, fb) / (normA * normB)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}
