// Package mod - /mod timeout command
package mod

import (
	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createTimeoutCommand creates the /mod timeout subcommand
func (m *Module) createTimeoutCommand() *discord.Command {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(moderation.TimeoutChoices))
	for _, c := range moderation.TimeoutChoices {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: c.Label, Value: c.Value})
	}

	return discord.NewCommand(
		"timeout",
		"Aísla temporalmente a un usuario",
		"mod",
		m.timeoutHandler,
	).WithOptions(
		userOption("Usuario a aislar"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Duración del aislamiento",
			Required:    true,
			Choices:     choices,
		},
		reasonOption(false),
		dmOption(),
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers).
		InGuild()
}

// timeoutHandler handles the /mod timeout command
func (m *Module) timeoutHandler(ctx *discord.CommandContext) error {
	duration := ctx.GetIntOption("duracion")
	return m.runQuick(ctx, moderation.ActionTimeout, func(st *moderation.State) {
		st.Timeout = duration
	})
}
