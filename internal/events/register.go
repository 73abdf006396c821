// Package events provides a registry for organizing bot events.
// Events are organized by category (guild, member, message, moderation, etc.)
package events

import (
	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/internal/leveling"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

// Deps holds the services the event handlers feed
type Deps struct {
	// Watcher discovers actions taken outside the bot; nil disables it.
	Watcher *audit.Watcher
	// Levels is nil when MongoDB is not configured.
	Levels *leveling.Service
	Guilds *config.GuildDirectory
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client)

	// Member events (leave/timeout changes)
	RegisterMemberEvents(client, deps.Watcher)

	// Ban events
	RegisterModerationEvents(client, deps.Watcher)

	// Message events (XP)
	RegisterMessageEvents(client, deps.Levels, deps.Guilds)

	// Shard events
	RegisterShardEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
