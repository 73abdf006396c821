// Package level provides the /level commands
package level

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyModGo/internal/leveling"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const (
	colorLevel = 0xF1C40F
	barWidth   = 12
)

// ProgressBar draws current/needed as a fixed width bar
func ProgressBar(current, needed int64) string {
	filled := 0
	if needed > 0 {
		filled = int(current * barWidth / needed)
	}
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", barWidth-filled)
}

// RankEmbed renders the level card of one member
func RankEmbed(user *discordgo.User, doc *models.LevelDocument) *discordgo.MessageEmbed {
	p := leveling.ProgressFor(doc.XP)
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⭐ Nivel de %s", user.Username),
		Color: colorLevel,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: user.AvatarURL(""),
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Nivel", Value: fmt.Sprintf("%d", p.Level), Inline: true},
			{Name: "XP total", Value: fmt.Sprintf("%d", doc.XP), Inline: true},
			{Name: "Mensajes", Value: fmt.Sprintf("%d", doc.Messages), Inline: true},
			{
				Name:  "Progreso",
				Value: fmt.Sprintf("%s `%d/%d`", ProgressBar(p.Current, p.Needed), p.Current, p.Needed),
			},
		},
	}
}

// TopEmbed renders the guild leaderboard
func TopEmbed(guildName string, docs []*models.LevelDocument) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 Ranking de %s", guildName),
		Color: colorLevel,
	}
	if len(docs) == 0 {
		embed.Description = "Nadie ha ganado XP todavía."
		return embed
	}

	var b strings.Builder
	for i, doc := range docs {
		medal := fmt.Sprintf("`#%d`", i+1)
		switch i {
		case 0:
			medal = "🥇"
		case 1:
			medal = "🥈"
		case 2:
			medal = "🥉"
		}
		fmt.Fprintf(&b, "%s <@%s> · Nivel %d · %d XP\n", medal, doc.UserID, leveling.ProgressFor(doc.XP).Level, doc.XP)
	}
	embed.Description = b.String()
	return embed
}
