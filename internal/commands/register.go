// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (utils, mod, level)
package commands

import (
	"github.com/PancyStudios/PancyModGo/internal/commands/level"
	"github.com/PancyStudios/PancyModGo/internal/commands/mod"
	"github.com/PancyStudios/PancyModGo/internal/commands/utils"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
)

// Deps holds what the command categories need
type Deps struct {
	Mod   *mod.Module
	Level *level.Module
	// Health is the store /utils status pings
	Health utils.Pinger
}

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) {
	// Utility commands
	utils.RegisterUtilsCommands(client, deps.Health)

	// Moderation commands (/mod menu, /mod ban, /mod history...)
	if deps.Mod != nil {
		mod.RegisterModCommands(client, deps.Mod)
	}

	// Level commands need MongoDB
	if deps.Level != nil {
		level.RegisterLevelCommands(client, deps.Level)
	}
}
