package modlog

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	colorRevoked = 0x95A5A6
	colorFailed  = 0x607D8B
)

// caseURL groups the gallery embeds of one log entry; Discord merges embeds
// sharing a URL into a single image grid.
func caseURL(id int64) string {
	return fmt.Sprintf("https://pancymod.invalid/case/%d", id)
}

// LogEmbeds renders the log entry of rec with its image gallery
func LogEmbeds(rec *models.ActionRecord, attachments []models.AttachmentRecord) []*discordgo.MessageEmbed {
	action := moderation.Action(rec.Action)

	title := fmt.Sprintf("%s %s | Caso #%d", action.Emoji(), action.Label(), rec.ID)
	color := action.Color()
	switch {
	case rec.Revoked:
		title = fmt.Sprintf("~~%s~~ (revocado)", title)
		color = colorRevoked
	case !rec.ActionSuccess:
		color = colorFailed
	}

	body := rec.Body
	if body == "" {
		body = "*Sin razón*"
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Usuario", Value: fmt.Sprintf("<@%s> (`%s`)", rec.UserID, rec.UserID), Inline: true},
		{Name: "Staff", Value: fmt.Sprintf("<@%s>", rec.StaffID), Inline: true},
	}
	if rec.Timeout != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Duración",
			Value:  moderation.FormatDuration(time.Duration(*rec.Timeout) * time.Millisecond),
			Inline: true,
		})
	}
	if rec.DeleteMessageSeconds != nil && *rec.DeleteMessageSeconds > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Mensajes borrados",
			Value:  moderation.FormatDuration(time.Duration(*rec.DeleteMessageSeconds) * time.Second),
			Inline: true,
		})
	}
	if !rec.ActionSuccess {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Resultado", Value: "❌ La acción no se pudo aplicar"})
	}
	if rec.DM {
		dm := "✅ Entregado"
		if !rec.DMSuccess {
			dm = "❌ No entregado"
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Mensaje directo", Value: dm, Inline: true})
	}

	footer := "ID de usuario: " + rec.UserID
	if rec.Hidden {
		footer += " | Oculto"
	}

	main := &discordgo.MessageEmbed{
		URL:         caseURL(rec.ID),
		Title:       title,
		Description: body,
		Color:       color,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		Timestamp:   rec.Time().Format(time.RFC3339),
	}

	embeds := []*discordgo.MessageEmbed{main}
	for i, a := range attachments {
		if i == 0 {
			main.Image = &discordgo.MessageEmbedImage{URL: a.URL}
			continue
		}
		embeds = append(embeds, &discordgo.MessageEmbed{
			URL:   main.URL,
			Image: &discordgo.MessageEmbedImage{URL: a.URL},
		})
	}
	return embeds
}
