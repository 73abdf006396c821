package moderation

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	colorSuccess = 0x2ECC71
	colorPartial = 0xE67E22
	colorFailure = 0xE74C3C
)

// RenderSummary draws the static result that replaces the wizard after confirm
func RenderSummary(st *State, out Outcome) *discordgo.MessageEmbed {
	title, color := "✅ Acción aplicada", colorSuccess
	switch {
	case !out.Action.Success:
		title, color = "❌ La acción falló", colorFailure
	case !out.Complete():
		title, color = "⚠️ Acción aplicada con errores", colorPartial
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Usuario", Value: fmt.Sprintf("<@%s>", st.Target.ID()), Inline: true},
		{Name: "Acción", Value: st.Action.Emoji() + " " + st.Action.Label(), Inline: true},
		{Name: "Resultado", Value: actionLine(out.Action)},
	}
	if st.DM {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Mensaje directo", Value: dmLine(out.DM)})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "Registro", Value: insertLine(out.Insert)})

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: st.Body,
		Color:       color,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: st.Target.ID(),
		},
	}
}

func actionLine(s ActionStatus) string {
	if s.Success {
		return "Aplicada"
	}
	return s.Error.Reason()
}

func dmLine(s DmStatus) string {
	if s.Success {
		return "Enviado"
	}
	return s.Error.Reason()
}

func insertLine(s InsertStatus) string {
	if s.Success {
		return fmt.Sprintf("Caso #%d", s.ID)
	}
	return "No se pudo guardar el registro"
}
