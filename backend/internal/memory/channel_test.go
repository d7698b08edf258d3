package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"rico-bot/backend/internal/constants"
	"rico-bot/backend/internal/store"
)

func TestChannelAddAndRecentOrdering(t *testing.T) {
	mem := NewChannelMemory(store.NewMemStore())
	ctx := context.Background()
	channelID := int64(42)

	for i := 0; i < 3; i++ {
		if err := mem.Add(ctx, channelID, fmt.Sprintf("message %d", i), "alice"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	messages, err := mem.Recent(ctx, channelID, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	// Most recent first
	if messages[0].Content != "message 2" || messages[2].Content != "message 0" {
		t.Errorf("Wrong ordering: %v", messages)
	}
}

func TestChannelCapacityBound(t *testing.T) {
	mem := NewChannelMemory(store.NewMemStore())
	ctx := context.Background()
	channelID := int64(42)

	for i := 0; i < constants.ChannelBufferSize+10; i++ {
		if err := mem.Add(ctx, channelID, fmt.Sprintf("message %d", i), "alice"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	messages, err := mem.Recent(ctx, channelID, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(messages) != constants.ChannelBufferSize {
		t.Errorf("Expected capacity %d, got %d", constants.ChannelBufferSize, len(messages))
	}
	// The newest survives, the oldest were evicted
	if messages[0].Content != fmt.Sprintf("message %d", constants.ChannelBufferSize+9) {
		t.Errorf("Unexpected newest message: %q", messages[0].Content)
	}
	last := messages[len(messages)-1].Content
	if last != "message 10" {
		t.Errorf("Expected oldest surviving message to be 'message 10', got %q", last)
	}
}

func TestChannelTruncatesLongMessages(t *testing.T) {
	mem := NewChannelMemory(store.NewMemStore())
	ctx := context.Background()

	long := strings.Repeat("a", constants.ChannelMaxMessageLength+100)
	if err := mem.Add(ctx, 1, long, "alice"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	messages, err := mem.Recent(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	got := messages[0].Content
	if len(got) != constants.ChannelMaxMessageLength+3 {
		t.Errorf("Expected %d chars, got %d", constants.ChannelMaxMessageLength+3, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix: %q", got[len(got)-10:])
	}
}

func TestChannelTruncatesOnRuneBoundary(t *testing.T) {
	mem := NewChannelMemory(store.NewMemStore())
	ctx := context.Background()

	long := strings.Repeat("é", constants.ChannelMaxMessageLength+50)
	if err := mem.Add(ctx, 1, long, "alice"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	messages, err := mem.Recent(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	got := messages[0].Content
	if !utf8.ValidString(got) {
		t.Fatalf("Stored content is not valid UTF-8: %q", got[:20])
	}
	if strings.ContainsRune(got, utf8.RuneError) {
		t.Errorf("Truncation split a multibyte rune: %q", got[len(got)-10:])
	}
	if n := utf8.RuneCountInString(got); n != constants.ChannelMaxMessageLength+3 {
		t.Errorf("Expected %d runes, got %d", constants.ChannelMaxMessageLength+3, n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix: %q", got[len(got)-10:])
	}
}

func TestChannelFormattedEmpty(t *testing.T) {
	mem := NewChannelMemory(store.NewMemStore())
	got, err := mem.Formatted(context.Background(), 999, 10)
	if err != nil {
		t.Fatalf("Formatted failed: %v", err)
	}
	if got != "No recent conversation history." {
		t.Errorf("Expected empty-transcript message, got %q", got)
	}
}

func TestChannelFormattedShape(t *testing.T) {
	mem := NewChannelMemory(store.NewMemStore())
	ctx := context.Background()

	if err := mem.Add(ctx, 7, "hello there", "bob"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	got, err := mem.Formatted(ctx, 7, 10)
	if err != nil {
		t.Fatalf("Formatted failed: %v", err)
	}
	if !strings.Contains(got, "] bob: hello there") || !strings.HasPrefix(got, "[") {
		t.Errorf("Unexpected transcript line: %q", got)
	}
}

func TestChannelSearchCaseInsensitive(t *testing.T) {
	mem := NewChannelMemory(store.NewMemStore())
	ctx := context.Background()
	channelID := int64(5)

	for _, content := range []string{"Deploy finished", "lunch time", "DEPLOY broke"} {
		if err := mem.Add(ctx, channelID, content, "alice"); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	matches, err := mem.Search(ctx, channelID, "deploy", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if !strings.Contains(strings.ToLower(m.Content), "deploy") {
			t.Errorf("Non-matching hit: %q", m.Content)
		}
	}
}

func TestChannelLegacyBareStrings(t *testing.T) {
	st := store.NewMemStore()
	ctx := context.Background()
	if err := st.LPush(ctx, "history:3", "plain old line"); err != nil {
		t.Fatalf("LPush failed: %v", err)
	}

	mem := NewChannelMemory(st)
	messages, err := mem.Recent(ctx, 3, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "plain old line" || messages[0].Author != "Unknown" {
		t.Errorf("Legacy entry mishandled: %+v", messages[0])
	}
}

func TestChannelNilStoreDegrades(t *testing.T) {
	mem := NewChannelMemory(nil)
	ctx := context.Background()

	if err := mem.Add(ctx, 1, "hi", "alice"); err != nil {
		t.Errorf("Add on nil store should be a no-op, got %v", err)
	}
	messages, err := mem.Recent(ctx, 1, 10)
	if err != nil || len(messages) != 0 {
		t.Errorf("Recent on nil store should be empty, got %v, %v", messages, err)
	}
}
