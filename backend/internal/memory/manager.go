// Package memory implements the four memory tiers behind one facade:
// Core (privileged global facts), User (per-identity dossier), General
// (semantically searchable facts) and Channel (rolling transcripts). All
// tiers share one backing store handle and stay usable, degraded, when no
// store is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rico-bot/backend/internal/adapter"
	"rico-bot/backend/internal/constants"
	"rico-bot/backend/internal/store"
	"rico-bot/backend/pkg/logger"
)

// Manager is the memory facade
type Manager struct {
	Core    *CoreMemory
	User    *UserMemory
	General *GeneralMemory
	Channel *ChannelMemory

	logger *zap.Logger
}

// NewManager wires the four tiers over one store handle. Both st and
// embedder may be nil; every operation then degrades to empty defaults.
func NewManager(st store.Store, embedder adapter.Embedder) *Manager {
	return &Manager{
		Core:    NewCoreMemory(st),
		User:    NewUserMemory(st),
		General: NewGeneralMemory(st, embedder),
		Channel: NewChannelMemory(st),
		logger:  logger.Get(),
	}
}

// BuildPrompt assembles the system-prompt context from all four tiers.
// A failing tier contributes its empty state rather than aborting assembly.
func (m *Manager) BuildPrompt(ctx context.Context, userID, channelID int64, message string) string {
	core, err := m.Core.Get(ctx)
	if err != nil {
		m.logger.Warn("Core memory read failed during prompt assembly", zap.Error(err))
	}

	user, err := m.User.Get(ctx, userID)
	if err != nil {
		m.logger.Warn("User memory read failed during prompt assembly", zap.Error(err))
		user = emptyDossier()
	}
	userJSON, _ := json.Marshal(user)

	general, err := m.General.Search(ctx, message, constants.GeneralSearchTopK)
	if err != nil {
		m.logger.Warn("General memory search failed during prompt assembly", zap.Error(err))
	}
	generalJSON, _ := json.Marshal(general)

	transcript, err := m.Channel.Formatted(ctx, channelID, 50)
	if err != nil {
		m.logger.Warn("Channel transcript read failed during prompt assembly", zap.Error(err))
		transcript = "No recent conversation history."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[CORE MEMORY]\n%s\n\n", core)
	fmt.Fprintf(&b, "[USER DOSSIER]\n%s\n\n", userJSON)
	fmt.Fprintf(&b, "[RELEVANT MEMORY]\n%s\n\n", generalJSON)
	fmt.Fprintf(&b, "[CHANNEL CONTEXT - Last 50 messages]\n%s\n\n", transcript)
	fmt.Fprintf(&b, "[CURRENT MESSAGE]\n%s\n", message)
	return b.String()
}
