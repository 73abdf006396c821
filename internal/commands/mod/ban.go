// Package mod - /mod ban command
package mod

import (
	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createBanCommand creates the /mod ban subcommand
func (m *Module) createBanCommand() *discord.Command {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(moderation.PurgeChoices))
	for _, c := range moderation.PurgeChoices {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c.Label, Value: c.Value})
	}

	return discord.NewCommand(
		"ban",
		"Banea a un usuario del servidor",
		"mod",
		m.banHandler,
	).WithOptions(
		userOption("Usuario a banear"),
		reasonOption(false),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "borrar",
			Description: "Mensajes recientes a eliminar",
			Choices:     choices,
		},
		dmOption(),
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		InGuild()
}

// banHandler handles the /mod ban command
func (m *Module) banHandler(ctx *discord.CommandContext) error {
	seconds := int(ctx.GetIntOption("borrar"))
	return m.runQuick(ctx, moderation.ActionBan, func(st *moderation.State) {
		st.DeleteMessageSeconds = seconds
	})
}
