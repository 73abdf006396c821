// Package events provides event handlers for message events
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/leveling"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const xpTimeout = 5 * time.Second

// RegisterMessageEvents registers the XP handler. Nothing is registered when
// leveling is unavailable.
func RegisterMessageEvents(client *discord.ExtendedClient, levels *leveling.Service, guilds *config.GuildDirectory) {
	if levels == nil {
		return
	}
	client.EventHandler.OnMessageCreate(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		defer errors.RecoverMiddleware()()
		onMessageCreate(s, m, levels, guilds)
	})
}

// levelSettings returns whether XP counts in guildID and where level-up
// notices go
func levelSettings(guilds *config.GuildDirectory, guildID, messageChannel string) (enabled bool, channel string) {
	if guilds == nil {
		return true, messageChannel
	}
	settings, ok := guilds.Guild(guildID)
	if !ok {
		return true, messageChannel
	}
	if settings.LevelingDisabled {
		return false, ""
	}
	if settings.LevelChannelID != "" {
		return true, settings.LevelChannelID
	}
	return true, messageChannel
}

func levelUpMessage(up *leveling.LevelUp) string {
	return fmt.Sprintf("🎉 <@%s> ha subido al **nivel %d**", up.UserID, up.Level)
}

// onMessageCreate rewards guild messages with XP
func onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, levels *leveling.Service, guilds *config.GuildDirectory) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	enabled, channel := levelSettings(guilds, m.GuildID, m.ChannelID)
	if !enabled {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), xpTimeout)
	defer cancel()

	up, err := levels.HandleMessage(ctx, m.GuildID, m.Author.ID)
	if err != nil {
		logger.Warn(fmt.Sprintf("Error sumando XP: %v", err), "Levels")
		return
	}
	if up == nil {
		return
	}

	logger.Debug(fmt.Sprintf("⭐ %s sube a nivel %d en %s", up.UserID, up.Level, up.GuildID), "Levels")
	if _, err := s.ChannelMessageSend(channel, levelUpMessage(up)); err != nil {
		logger.Error(fmt.Sprintf("Error enviando aviso de nivel: %v", err), "Levels")
	}
}
