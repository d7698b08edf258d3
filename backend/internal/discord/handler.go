// Package discord adapts the chat platform to the agent: message routing,
// mention parsing, transcript recording and chunked replies.
package discord

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"rico-bot/backend/internal/adapter"
	"rico-bot/backend/internal/agent"
	"rico-bot/backend/internal/constants"
	"rico-bot/backend/internal/identity"
	"rico-bot/backend/internal/memory"
	"rico-bot/backend/pkg/config"
	"rico-bot/backend/pkg/logger"
)

const (
	timedOutReply = "Error: LLM or tool timed out. Please try again."
	failedReply   = "Error: something went wrong while processing your request."
	emptyReply    = "Yes? Ask me something after the mention."
	notAllowed    = "This server/channel is not allowed."
)

// Handler handles Discord message processing
type Handler struct {
	agent    *agent.Agent
	llm      agent.ChatClient
	memory   *memory.Manager
	identity *identity.Registry
	cfg      *config.Config
	logger   *zap.Logger
}

// NewHandler creates a new Discord message handler
func NewHandler(bot *agent.Agent, llm agent.ChatClient, mem *memory.Manager, reg *identity.Registry, cfg *config.Config) *Handler {
	return &Handler{
		agent:    bot,
		llm:      llm,
		memory:   mem,
		identity: reg,
		cfg:      cfg,
		logger:   logger.Get(),
	}
}

// HandleMessage processes one inbound Discord message. Only DMs and
// addressed mentions get a response.
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	isDM := m.GuildID == ""
	content, isMentioned := stripMentions(s, m)
	if !isDM && !isMentioned {
		return
	}

	if !h.isAllowed(m) {
		_, _ = s.ChannelMessageSend(m.ChannelID, notAllowed)
		return
	}

	if content == "" {
		if isMentioned {
			_, _ = s.ChannelMessageSend(m.ChannelID, emptyReply)
		}
		return
	}

	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		h.logger.Error("Unparseable author id", zap.String("author_id", m.Author.ID))
		return
	}
	channelID, err := strconv.ParseInt(m.ChannelID, 10, 64)
	if err != nil {
		h.logger.Error("Unparseable channel id", zap.String("channel_id", m.ChannelID))
		return
	}

	displayName := m.Author.Username
	if m.Member != nil && m.Member.Nick != "" {
		displayName = m.Member.Nick
	}
	h.identity.Observe(userID, displayName)

	h.logger.Info("Processing Discord message",
		zap.Int64("user_id", userID),
		zap.Int64("channel_id", channelID),
		zap.Bool("is_dm", isDM),
	)

	_ = s.ChannelTyping(m.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.cfg.RequestTimeoutSec)*time.Second)
	defer cancel()

	answer := h.answer(ctx, content, userID, channelID, displayName)

	if !isDM {
		answer = m.Author.Mention() + " " + answer
	}
	h.sendLongMessage(s, m.ChannelID, answer)
}

// answer routes a query either through the planning agent (explicit prefix)
// or through the memory-augmented direct chat path.
func (h *Handler) answer(ctx context.Context, query string, userID, channelID int64, displayName string) string {
	who := h.identity.Lookup(userID)

	var reply string
	var err error
	if q, ok := agentPrefix(query); ok {
		reply, err = h.agent.Run(ctx, q, who, channelID)
	} else {
		if addErr := h.memory.Channel.Add(ctx, channelID, query, displayName); addErr != nil {
			h.logger.Warn("Failed to record inbound message", zap.Error(addErr))
		}
		prompt := h.memory.BuildPrompt(ctx, userID, channelID, query)
		reply, err = h.llm.Chat(ctx, []adapter.Message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: query},
		}, &adapter.ChatOptions{MaxTokens: 1000})
		if err == nil {
			if addErr := h.memory.Channel.Add(ctx, channelID, reply, constants.DefaultAgentName); addErr != nil {
				h.logger.Warn("Failed to record reply", zap.Error(addErr))
			}
		}
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return timedOutReply
		}
		h.logger.Error("Request handling failed", zap.Error(err))
		return failedReply
	}
	return reply
}

// isAllowed applies the static guild/channel allow-lists; empty lists
// allow everything.
func (h *Handler) isAllowed(m *discordgo.MessageCreate) bool {
	if len(h.cfg.AllowedGuildIDs) > 0 && m.GuildID != "" {
		guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
		if err != nil || !containsID(h.cfg.AllowedGuildIDs, guildID) {
			return false
		}
	}
	if len(h.cfg.AllowedChannelIDs) > 0 {
		channelID, err := strconv.ParseInt(m.ChannelID, 10, 64)
		if err != nil || !containsID(h.cfg.AllowedChannelIDs, channelID) {
			return false
		}
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// stripMentions reports whether the bot was mentioned and returns the
// content with mention tokens removed.
func stripMentions(s *discordgo.Session, m *discordgo.MessageCreate) (string, bool) {
	content := strings.TrimSpace(m.Content)
	mentioned := false
	for _, mention := range m.Mentions {
		if mention.ID == s.State.User.ID {
			mentioned = true
		}
		content = strings.ReplaceAll(content, "<@"+mention.ID+">", "")
		content = strings.ReplaceAll(content, "<@!"+mention.ID+">", "")
	}
	return strings.TrimSpace(content), mentioned
}

// agentPrefix detects the explicit tool-use prefixes and strips them
func agentPrefix(query string) (string, bool) {
	lower := strings.ToLower(query)
	switch {
	case strings.HasPrefix(lower, "agent:"):
		return strings.TrimSpace(query[len("agent:"):]), true
	case strings.HasPrefix(lower, "use tools"), strings.HasPrefix(lower, "use tool"):
		if idx := strings.Index(query, ":"); idx != -1 {
			return strings.TrimSpace(query[idx+1:]), true
		}
		return strings.TrimSpace(query), true
	}
	return query, false
}
