package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// NotificationMessage builds the DM sent to the target
func NotificationMessage(st *State) *discordgo.MessageSend {
	guildName := "el servidor"
	if st.Guild != nil && st.Guild.Name != "" {
		guildName = st.Guild.Name
	}

	title := fmt.Sprintf("%s Has sido %s en %s", st.Action.Emoji(), st.Action.Verb(), guildName)
	if st.Action == ActionNote {
		title = fmt.Sprintf("📝 Mensaje del equipo de moderación de %s", guildName)
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: st.Body,
		Color:       st.Action.Color(),
		Timestamp:   st.Timestamp.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "PancyMod",
		},
	}

	if d := st.TimeoutDuration(); d > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Duración",
			Value:  FormatDuration(d),
			Inline: true,
		})
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
}

var durationUnits = []struct {
	size      time.Duration
	one, many string
}{
	{24 * time.Hour, "día", "días"},
	{time.Hour, "hora", "horas"},
	{time.Minute, "minuto", "minutos"},
	{time.Second, "segundo", "segundos"},
}

// FormatDuration renders d in Spanish, e.g. "1 día y 6 horas"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0 segundos"
	}

	parts := make([]string, 0, len(durationUnits))
	for _, u := range durationUnits {
		n := d / u.size
		if n == 0 {
			continue
		}
		d -= n * u.size
		name := u.many
		if n == 1 {
			name = u.one
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " y " + parts[len(parts)-1]
}
