package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestAgentPrefix(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		detected bool
	}{
		{"agent: search for golang", "search for golang", true},
		{"Agent: do the thing", "do the thing", true},
		{"use tools: calculate 2+2", "calculate 2+2", true},
		{"use tool: calculate 2+2", "calculate 2+2", true},
		{"use tools please", "use tools please", true},
		{"what's the weather", "what's the weather", false},
		{"an agent: told me", "an agent: told me", false},
	}
	for _, tt := range tests {
		got, detected := agentPrefix(tt.in)
		if got != tt.want || detected != tt.detected {
			t.Errorf("agentPrefix(%q) = (%q, %v), want (%q, %v)", tt.in, got, detected, tt.want, tt.detected)
		}
	}
}

func TestStripMentions(t *testing.T) {
	session := &discordgo.Session{State: discordgo.NewState()}
	session.State.User = &discordgo.User{ID: "bot123"}

	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		Content:  "<@bot123> hello there",
		Mentions: []*discordgo.User{{ID: "bot123"}},
	}}
	content, mentioned := stripMentions(session, m)
	if !mentioned {
		t.Error("Expected bot mention to be detected")
	}
	if content != "hello there" {
		t.Errorf("Expected stripped content, got %q", content)
	}

	// Nickname mention form
	m = &discordgo.MessageCreate{Message: &discordgo.Message{
		Content:  "<@!bot123> hi",
		Mentions: []*discordgo.User{{ID: "bot123"}},
	}}
	content, mentioned = stripMentions(session, m)
	if !mentioned || content != "hi" {
		t.Errorf("Nickname mention mishandled: (%q, %v)", content, mentioned)
	}

	// Mention of someone else only
	m = &discordgo.MessageCreate{Message: &discordgo.Message{
		Content:  "<@other456> hello",
		Mentions: []*discordgo.User{{ID: "other456"}},
	}}
	content, mentioned = stripMentions(session, m)
	if mentioned {
		t.Error("Foreign mention should not count as addressing the bot")
	}
	if content != "hello" {
		t.Errorf("Foreign mention token should still be stripped, got %q", content)
	}
}

func TestContainsID(t *testing.T) {
	ids := []int64{1, 2, 3}
	if !containsID(ids, 2) {
		t.Error("Expected 2 to be found")
	}
	if containsID(ids, 4) {
		t.Error("Did not expect 4 to be found")
	}
	if containsID(nil, 1) {
		t.Error("Empty list contains nothing")
	}
}
