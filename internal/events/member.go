// Package events provides event handlers for member events
package events

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers the member handlers. Leaves and timeout
// changes are handed to the audit watcher, which decides whether a moderator
// was behind them.
func RegisterMemberEvents(client *discord.ExtendedClient, watcher *audit.Watcher) {
	client.EventHandler.OnGuildMemberAdd(onGuildMemberAdd)
	client.EventHandler.OnGuildMemberRemove(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if m.Member == nil || m.User == nil {
			return
		}
		logger.Debug(fmt.Sprintf("👋 %s salió del servidor %s", m.User.Username, m.GuildID), "Member")
		if watcher != nil && !m.User.Bot {
			watcher.OnMemberRemove(m.GuildID, m.User.ID)
		}
	})
	client.EventHandler.OnGuildMemberUpdate(func(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		if watcher == nil || m.Member == nil || m.User == nil || m.BeforeUpdate == nil {
			return
		}
		watcher.OnTimeoutChange(m.GuildID, m.User.ID, m.BeforeUpdate.CommunicationDisabledUntil, m.CommunicationDisabledUntil)
	})
}

// onGuildMemberAdd is called when a new member joins the server
func onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	logger.Debug(fmt.Sprintf("👋 Nuevo miembro: %s en servidor %s", m.User.Username, m.GuildID), "Member")
}
