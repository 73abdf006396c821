// Package mod - /mod kick command
package mod

import (
	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createKickCommand creates the /mod kick subcommand
func (m *Module) createKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Expulsa a un usuario del servidor",
		"mod",
		m.kickHandler,
	).WithOptions(
		userOption("Usuario a expulsar"),
		reasonOption(false),
		dmOption(),
	).WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionKickMembers).
		InGuild()
}

// kickHandler handles the /mod kick command
func (m *Module) kickHandler(ctx *discord.CommandContext) error {
	return m.runQuick(ctx, moderation.ActionKick, nil)
}
