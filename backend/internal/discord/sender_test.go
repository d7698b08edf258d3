package discord

import (
	"strings"
	"testing"

	"rico-bot/backend/internal/constants"
)

func TestSplitMessageShortContentUntouched(t *testing.T) {
	chunks := SplitMessage("hello", constants.DiscordMaxMessageLength)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("Short content should pass through: %v", chunks)
	}
}

func TestSplitMessageRespectsLimit(t *testing.T) {
	content := strings.Repeat("a", constants.DiscordMaxMessageLength*2+100)
	chunks := SplitMessage(content, constants.DiscordMaxMessageLength)

	if len(chunks) < 3 {
		t.Fatalf("Expected at least 3 chunks, got %d", len(chunks))
	}
	var total int
	for i, chunk := range chunks {
		if len([]rune(chunk)) > constants.DiscordMaxMessageLength {
			t.Errorf("Chunk %d exceeds the limit: %d runes", i, len([]rune(chunk)))
		}
		total += len(chunk)
	}
	if total != len(content) {
		t.Errorf("Content lost in splitting: %d of %d chars", total, len(content))
	}
}

func TestSplitMessagePrefersNewlineBreaks(t *testing.T) {
	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	content := first + "\n" + second

	chunks := SplitMessage(content, 100)
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != first {
		t.Errorf("Expected break at the newline, got %q", chunks[0])
	}
	if chunks[1] != second {
		t.Errorf("Separator should not leak into the next chunk: %q", chunks[1])
	}
}

func TestSplitMessagePrefersSpaceBreaks(t *testing.T) {
	words := strings.Repeat("word ", 30) // 150 chars
	chunks := SplitMessage(strings.TrimSpace(words), 100)

	for i, chunk := range chunks {
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Errorf("Chunk %d has stray spaces: %q", i, chunk)
		}
		if len(chunk) > 100 {
			t.Errorf("Chunk %d too long: %d", i, len(chunk))
		}
	}
}

func TestSplitMessageHandlesMultibyteRunes(t *testing.T) {
	content := strings.Repeat("é", 250)
	chunks := SplitMessage(content, 100)

	var rebuilt strings.Builder
	for _, chunk := range chunks {
		if len([]rune(chunk)) > 100 {
			t.Errorf("Chunk exceeds rune limit: %d", len([]rune(chunk)))
		}
		rebuilt.WriteString(chunk)
	}
	if rebuilt.String() != content {
		t.Error("Multibyte content corrupted by splitting")
	}
}
