package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"rico-bot/backend/internal/store"
)

// UserMemory is the per-identity dossier: a hash keyed by user id whose
// fields are JSON-encoded values. Every record carries at least a "history"
// ordered list plus free-form trait/preference fields.
type UserMemory struct {
	store store.Store
	mu    sync.Mutex
}

// NewUserMemory creates the user tier; st may be nil for degraded mode
func NewUserMemory(st store.Store) *UserMemory {
	return &UserMemory{store: st}
}

func userKey(userID int64) string {
	return fmt.Sprintf("user:%d:memory", userID)
}

func emptyDossier() map[string]any {
	return map[string]any{
		"traits":      []any{},
		"preferences": map[string]any{},
		"history":     []any{},
	}
}

// Get returns the dossier for userID, or the empty default shape
func (u *UserMemory) Get(ctx context.Context, userID int64) (map[string]any, error) {
	if u.store == nil {
		return emptyDossier(), nil
	}
	fields, err := u.store.HGetAll(ctx, userKey(userID))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return emptyDossier(), nil
	}
	record := make(map[string]any, len(fields))
	for field, raw := range fields {
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		record[field] = value
	}
	return record, nil
}

// Update merges fields into the stored record. Each given field overwrites
// its previous value; untouched fields are preserved.
func (u *UserMemory) Update(ctx context.Context, userID int64, fields map[string]any) error {
	if u.store == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	key := userKey(userID)
	for field, value := range fields {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %q: %w", field, err)
		}
		if err := u.store.HSet(ctx, key, field, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// AppendHistory appends one entry to the dossier's history list
func (u *UserMemory) AppendHistory(ctx context.Context, userID int64, entry map[string]any) error {
	if u.store == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	raw, err := u.store.HGetAll(ctx, userKey(userID))
	if err != nil {
		return err
	}
	var history []any
	if prev, ok := raw["history"]; ok {
		_ = json.Unmarshal([]byte(prev), &history)
	}
	history = append(history, entry)

	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return u.store.HSet(ctx, userKey(userID), "history", string(data))
}

// History returns the dossier's history list, oldest first
func (u *UserMemory) History(ctx context.Context, userID int64) ([]map[string]any, error) {
	record, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	rawHistory, ok := record["history"].([]any)
	if !ok {
		return nil, nil
	}
	entries := make([]map[string]any, 0, len(rawHistory))
	for _, item := range rawHistory {
		if entry, ok := item.(map[string]any); ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Clear removes the whole dossier for userID
func (u *UserMemory) Clear(ctx context.Context, userID int64) error {
	if u.store == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.store.Del(ctx, userKey(userID))
}
