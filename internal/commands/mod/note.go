// Package mod - /mod note command
package mod

import (
	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createNoteCommand creates the /mod note subcommand
func (m *Module) createNoteCommand() *discord.Command {
	return discord.NewCommand(
		"note",
		"Añade una nota interna sobre un usuario",
		"mod",
		m.noteHandler,
	).WithOptions(
		userOption("Usuario sobre el que anotar"),
		reasonOption(true),
	).WithUserPermissions(discordgo.PermissionModerateMembers).InGuild()
}

// noteHandler handles the /mod note command. Notes are never sent to the user.
func (m *Module) noteHandler(ctx *discord.CommandContext) error {
	return m.runQuick(ctx, moderation.ActionNote, func(st *moderation.State) {
		st.DM = false
	})
}
