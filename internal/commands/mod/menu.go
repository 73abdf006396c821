// Package mod - /mod menu command
package mod

import (
	"context"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createMenuCommand creates the /mod menu subcommand
func (m *Module) createMenuCommand() *discord.Command {
	return discord.NewCommand(
		"menu",
		"Abre el menú de moderación para un usuario",
		"mod",
		m.menuHandler,
	).WithOptions(
		userOption("Usuario a moderar"),
	).WithUserPermissions(discordgo.PermissionModerateMembers).InGuild()
}

// menuHandler opens the wizard with the default state
func (m *Module) menuHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	c, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return m.Wizard.Open(c, ctx.Interaction.Interaction, user.ID)
}
