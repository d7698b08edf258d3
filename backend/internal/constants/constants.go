package constants

import "time"

// Agent constants
const (
	// DefaultAgentName is the display name used for the bot's own transcript entries
	DefaultAgentName = "RICO"

	// MaxToolCalls is the hard ceiling on tool invocations per plan
	MaxToolCalls = 5

	// ToolLimitMarker is appended to outputs when the ceiling is hit
	ToolLimitMarker = "[Tool call limit reached]"
)

// Discord constants
const (
	// DiscordMaxMessageLength is the maximum character limit for Discord messages
	DiscordMaxMessageLength = 2000

	// InterChunkDelay is the pause between sequential chunks of a long reply
	InterChunkDelay = 500 * time.Millisecond
)

// Memory constants
const (
	// ChannelBufferSize is the per-channel transcript capacity
	ChannelBufferSize = 100

	// ChannelMaxMessageLength truncates stored transcript entries
	ChannelMaxMessageLength = 500

	// GeneralSearchTopK is the default result count for semantic search
	GeneralSearchTopK = 5

	// GeneralScanLimit bounds the linear fallback scan over general memory
	GeneralScanLimit = 500

	// EmbeddingCacheSize bounds the embedding LRU cache
	EmbeddingCacheSize = 1000
)

// Tool execution constants
const (
	// CodeExecTimeout is the wall-clock limit for sandboxed code execution
	CodeExecTimeout = 5 * time.Second

	// WebSearchTimeout bounds one web search request
	WebSearchTimeout = 10 * time.Second
)
