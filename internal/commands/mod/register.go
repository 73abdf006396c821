// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"context"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
)

// RegisterModCommands registers all moderation commands as /mod subcommands
// and routes the mod menu components to the wizard
func RegisterModCommands(client *discord.ExtendedClient, m *Module) {
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		m.createMenuCommand(),
		m.createBanCommand(),
		m.createKickCommand(),
		m.createTimeoutCommand(),
		m.createWarnCommand(),
		m.createNoteCommand(),
		m.createHistoryCommand(),
		m.createRevokeCommand(),
		m.createHideCommand(),
		m.createAttachCommand(),
	)
	client.CommandHandler.AddGlobalCommand(modGroup)

	client.Components.HandleComponent(moderation.ComponentPrefix, func(ctx *discord.ComponentContext) error {
		c, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return m.Wizard.HandleComponent(c, ctx.Interaction.Interaction)
	})
	client.Components.HandleModal(moderation.ComponentPrefix, func(ctx *discord.ComponentContext) error {
		c, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return m.Wizard.HandleModal(c, ctx.Interaction.Interaction)
	})
}
