package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"rico-bot/backend/internal/constants"
	"rico-bot/backend/internal/store"
)

// ChannelMessage is one entry in a channel's rolling transcript
type ChannelMessage struct {
	Timestamp int64  `json:"timestamp"`
	Author    string `json:"author"`
	Content   string `json:"content"`
}

// ChannelMemory keeps a capped, newest-first transcript per channel
type ChannelMemory struct {
	store store.Store
	mu    sync.Mutex
}

// NewChannelMemory creates the channel tier; st may be nil for degraded mode
func NewChannelMemory(st store.Store) *ChannelMemory {
	return &ChannelMemory{store: st}
}

func channelKey(channelID int64) string {
	return fmt.Sprintf("history:%d", channelID)
}

// Add records a message in the channel's transcript. Content beyond the
// configured maximum is truncated with an ellipsis before insertion, and the
// list is trimmed back to capacity afterwards.
func (c *ChannelMemory) Add(ctx context.Context, channelID int64, content, author string) error {
	if c.store == nil {
		return nil
	}
	if author == "" {
		author = "Unknown"
	}
	if runes := []rune(content); len(runes) > constants.ChannelMaxMessageLength {
		content = string(runes[:constants.ChannelMaxMessageLength]) + "..."
	}

	entry := ChannelMessage{
		Timestamp: time.Now().Unix(),
		Author:    author,
		Content:   content,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := channelKey(channelID)

	// LPush+LTrim is a read-modify-write against the capacity bound; two
	// concurrent writers could otherwise leave the list over capacity.
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.LPush(ctx, key, string(data)); err != nil {
		return err
	}
	return c.store.LTrim(ctx, key, 0, constants.ChannelBufferSize-1)
}

// Recent returns up to limit messages, most recent first
func (c *ChannelMemory) Recent(ctx context.Context, channelID int64, limit int) ([]ChannelMessage, error) {
	if c.store == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = constants.ChannelBufferSize
	}
	raw, err := c.store.LRange(ctx, channelKey(channelID), 0, int64(limit-1))
	if err != nil {
		return nil, err
	}
	messages := make([]ChannelMessage, 0, len(raw))
	for _, item := range raw {
		var msg ChannelMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// Legacy format: bare string content
			msg = ChannelMessage{Author: "Unknown", Content: item}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Formatted renders a human-readable transcript for prompt assembly
func (c *ChannelMemory) Formatted(ctx context.Context, channelID int64, limit int) (string, error) {
	messages, err := c.Recent(ctx, channelID, limit)
	if err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "No recent conversation history.", nil
	}
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, formatChannelMessage(msg))
	}
	return strings.Join(lines, "\n"), nil
}

// Search performs a case-insensitive substring match over recent messages
func (c *ChannelMemory) Search(ctx context.Context, channelID int64, query string, limit int) ([]ChannelMessage, error) {
	messages, err := c.Recent(ctx, channelID, constants.ChannelBufferSize)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	q := strings.ToLower(query)
	var matches []ChannelMessage
	for _, msg := range messages {
		if strings.Contains(strings.ToLower(msg.Content), q) {
			matches = append(matches, msg)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

func formatChannelMessage(msg ChannelMessage) string {
	timeStr := "??:??"
	if msg.Timestamp > 0 {
		timeStr = time.Unix(msg.Timestamp, 0).Format("15:04")
	}
	return fmt.Sprintf("[%s] %s: %s", timeStr, msg.Author, msg.Content)
}
