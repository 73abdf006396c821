// Package mod - /mod warn command
package mod

import (
	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /mod warn subcommand
func (m *Module) createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		m.warnHandler,
	).WithOptions(
		userOption("Usuario a advertir"),
		reasonOption(true),
		dmOption(),
	).WithUserPermissions(discordgo.PermissionModerateMembers).InGuild()
}

// warnHandler handles the /mod warn command
func (m *Module) warnHandler(ctx *discord.CommandContext) error {
	return m.runQuick(ctx, moderation.ActionWarn, nil)
}
