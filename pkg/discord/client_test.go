package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// TestNewClientIntents verifies the gateway intents the bot's events depend on
func TestNewClientIntents(t *testing.T) {
	c, err := NewClient("token")
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	want := map[string]discordgo.Intent{
		"guilds":           discordgo.IntentsGuilds,
		"guild messages":   discordgo.IntentsGuildMessages,
		"guild members":    discordgo.IntentsGuildMembers,
		"guild moderation": discordgo.IntentGuildModeration,
	}
	for name, intent := range want {
		if c.Session.Identify.Intents&intent == 0 {
			t.Errorf("intent %s not requested", name)
		}
	}
}
