// Package mod - /mod history command
package mod

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// historyLimit is how many entries one embed lists
const historyLimit = 15

// createHistoryCommand creates the /mod history subcommand
func (m *Module) createHistoryCommand() *discord.Command {
	return discord.NewCommand(
		"history",
		"Muestra el historial de moderación de un usuario",
		"mod",
		m.historyHandler,
	).WithOptions(
		userOption("Usuario a consultar"),
	).InGuild()
}

// historyHandler lists the records of a user. Members without moderation
// permissions may only read their own history, without hidden entries.
func (m *Module) historyHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	staff := isStaff(ctx)
	if !staff && user.ID != ctx.User().ID {
		return ctx.ReplyEphemeral("❌ Solo puedes consultar tu propio historial.")
	}

	c, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	records, err := m.Store.SelectByUser(c, ctx.Interaction.GuildID, user.ID)
	if err != nil {
		_ = ctx.ReplyEphemeral("❌ No se pudo leer el historial.")
		return err
	}

	return ctx.ReplyEphemeralEmbed(HistoryEmbed(user, records, staff))
}

// HistoryEmbed renders records newest first. Revoked entries are struck
// through; hidden entries are left out unless showHidden is set.
func HistoryEmbed(user *discordgo.User, records []models.ActionRecord, showHidden bool) *discordgo.MessageEmbed {
	var lines []string
	shown := 0
	for _, rec := range records {
		if rec.Hidden && !showHidden {
			continue
		}
		shown++
		if len(lines) >= historyLimit {
			continue
		}
		lines = append(lines, historyLine(rec))
	}

	embed := &discordgo.MessageEmbed{
		Title: "Historial de " + user.Username,
		Color: 0x5865F2,
	}
	switch {
	case shown == 0:
		embed.Description = "Sin registros."
	default:
		embed.Description = strings.Join(lines, "\n")
		if shown > historyLimit {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Mostrando %d de %d registros", historyLimit, shown)}
		}
	}
	return embed
}

func historyLine(rec models.ActionRecord) string {
	action := moderation.Action(rec.Action)
	body := rec.Body
	if body == "" {
		body = "Sin razón"
	}
	if len([]rune(body)) > 80 {
		body = string([]rune(body)[:77]) + "..."
	}

	line := fmt.Sprintf("`#%d` %s **%s** <t:%d:R> %s", rec.ID, action.Emoji(), action.Label(), rec.Time().Unix(), body)
	if rec.Timeout != nil {
		line += " (" + moderation.FormatDuration(time.Duration(*rec.Timeout)*time.Millisecond) + ")"
	}
	if rec.Hidden {
		line += " 🔒"
	}
	if rec.Revoked {
		line = "~~" + line + "~~"
	}
	return line
}
