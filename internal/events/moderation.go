package events

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterModerationEvents feeds ban changes to the audit watcher
func RegisterModerationEvents(client *discord.ExtendedClient, watcher *audit.Watcher) {
	if watcher == nil {
		return
	}
	client.EventHandler.OnGuildBanAdd(func(s *discordgo.Session, b *discordgo.GuildBanAdd) {
		if b.User == nil {
			return
		}
		logger.Debug(fmt.Sprintf("🔨 %s baneado en %s", b.User.ID, b.GuildID), "Moderation")
		watcher.OnBanAdd(b.GuildID, b.User.ID)
	})
	client.EventHandler.OnGuildBanRemove(func(s *discordgo.Session, b *discordgo.GuildBanRemove) {
		if b.User == nil {
			return
		}
		logger.Debug(fmt.Sprintf("🔓 %s desbaneado en %s", b.User.ID, b.GuildID), "Moderation")
		watcher.OnBanRemove(b.GuildID, b.User.ID)
	})
}
