package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"rico-bot/backend/internal/store"
)

// coreKey is the single key holding the append-only core memory list
const coreKey = "core:memory"

// CoreEntry is one fact the agent should always know
type CoreEntry struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`
}

// CoreMemory is the privileged-only, append-only global fact store. The
// read-modify-write append is serialized by a mutex because the backing
// store's get/set are not atomic together.
type CoreMemory struct {
	store store.Store
	mu    sync.Mutex
}

// NewCoreMemory creates the core tier; st may be nil for degraded mode
func NewCoreMemory(st store.Store) *CoreMemory {
	return &CoreMemory{store: st}
}

// Get returns the raw stored value, or "" when unset or unconfigured
func (c *CoreMemory) Get(ctx context.Context) (string, error) {
	if c.store == nil {
		return "", nil
	}
	return c.store.Get(ctx, coreKey)
}

// Entries parses the stored value into a list. A legacy non-list value is
// wrapped into a one-element list rather than rejected.
func (c *CoreMemory) Entries(ctx context.Context) ([]CoreEntry, error) {
	raw, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	return parseCoreEntries(raw), nil
}

// Add appends a new entry, preserving existing entries
func (c *CoreMemory) Add(ctx context.Context, title, content string) error {
	if c.store == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := c.store.Get(ctx, coreKey)
	if err != nil {
		return err
	}
	entries := parseCoreEntries(raw)

	entries = append(entries, CoreEntry{
		Title:     title,
		Content:   content,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	})

	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, coreKey, string(data))
}

func parseCoreEntries(raw string) []CoreEntry {
	if raw == "" {
		return nil
	}
	var entries []CoreEntry
	if err := json.Unmarshal([]byte(raw), &entries); err == nil {
		return entries
	}
	// Legacy format: a single object or free text. Keep it as one entry.
	var single CoreEntry
	if err := json.Unmarshal([]byte(raw), &single); err == nil && (single.Title != "" || single.Content != "") {
		return []CoreEntry{single}
	}
	return []CoreEntry{{Content: raw}}
}
