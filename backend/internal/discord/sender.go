package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"rico-bot/backend/internal/constants"
)

// sendLongMessage sends content as sequential chunks that each stay under
// the platform message-size limit, pausing briefly between chunks to keep
// the ordering stable.
func (h *Handler) sendLongMessage(s *discordgo.Session, channelID, content string) {
	chunks := SplitMessage(content, constants.DiscordMaxMessageLength)
	for i, chunk := range chunks {
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			h.logger.Error("Failed to send message chunk",
				zap.String("channel_id", channelID),
				zap.Int("chunk", i),
				zap.Error(err),
			)
			return
		}
		if i < len(chunks)-1 {
			time.Sleep(constants.InterChunkDelay)
		}
	}
}

// SplitMessage splits content into chunks of at most maxLength runes,
// preferring to break at the last newline or space inside the window.
func SplitMessage(content string, maxLength int) []string {
	runes := []rune(content)
	if len(runes) <= maxLength {
		return []string{content}
	}

	var chunks []string
	for len(runes) > maxLength {
		cut := maxLength
		for i := maxLength - 1; i > maxLength/2; i-- {
			if runes[i] == '\n' {
				cut = i
				break
			}
		}
		if cut == maxLength {
			for i := maxLength - 1; i > maxLength/2; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
		for len(runes) > 0 && (runes[0] == '\n' || runes[0] == ' ') {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
