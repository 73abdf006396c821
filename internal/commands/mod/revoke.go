// Package mod - /mod revoke and /mod hide commands
package mod

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/actionlog"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createRevokeCommand creates the /mod revoke subcommand
func (m *Module) createRevokeCommand() *discord.Command {
	return discord.NewCommand(
		"revoke",
		"Marca un caso como revocado o lo restaura",
		"mod",
		m.revokeHandler,
	).WithOptions(
		caseOption("Número de caso"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "revocado",
			Description: "Falso para restaurar el caso (por defecto verdadero)",
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).InGuild()
}

// createHideCommand creates the /mod hide subcommand
func (m *Module) createHideCommand() *discord.Command {
	return discord.NewCommand(
		"hide",
		"Oculta un caso a los servidores espejo y al usuario",
		"mod",
		m.hideHandler,
	).WithOptions(
		caseOption("Número de caso"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "oculto",
			Description: "Falso para volver a mostrarlo (por defecto verdadero)",
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).InGuild()
}

func flagOption(ctx *discord.CommandContext, name string) bool {
	if opt := ctx.GetOption(name); opt != nil {
		return opt.BoolValue()
	}
	return true
}

func (m *Module) revokeHandler(ctx *discord.CommandContext) error {
	value := flagOption(ctx, "revocado")
	return m.patch(ctx, actionlog.Patch{Revoked: &value})
}

func (m *Module) hideHandler(ctx *discord.CommandContext) error {
	value := flagOption(ctx, "oculto")
	return m.patch(ctx, actionlog.Patch{Hidden: &value})
}

// patch flips a flag of a case from this guild and refreshes its log copies
func (m *Module) patch(ctx *discord.CommandContext, p actionlog.Patch) error {
	id := ctx.GetIntOption("id")

	c, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	rec, err := m.Store.SelectByID(c, id)
	if errors.Is(err, actionlog.ErrNotFound) || (err == nil && rec.GuildID != ctx.Interaction.GuildID) {
		return ctx.ReplyEphemeral(fmt.Sprintf("❌ No existe el caso #%d en este servidor.", id))
	}
	if err != nil {
		_ = ctx.ReplyEphemeral("❌ No se pudo leer el caso.")
		return err
	}

	if err := m.Store.Update(c, id, p); err != nil {
		_ = ctx.ReplyEphemeral("❌ No se pudo actualizar el caso.")
		return err
	}
	if err := m.Notifier.PublishRevoked(c, rec); err != nil {
		logger.Error(fmt.Sprintf("No se pudo publicar el cambio del caso #%d: %v", id, err), "Fanout")
	}

	var msg string
	switch {
	case p.Revoked != nil && *p.Revoked:
		msg = "🚫 Caso #%d revocado."
	case p.Revoked != nil:
		msg = "♻️ Caso #%d restaurado."
	case p.Hidden != nil && *p.Hidden:
		msg = "🔒 Caso #%d ocultado."
	default:
		msg = "👁️ Caso #%d visible de nuevo."
	}
	return ctx.ReplyEphemeral(fmt.Sprintf(msg, id))
}
