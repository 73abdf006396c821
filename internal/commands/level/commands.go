package level

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/leveling"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const (
	queryTimeout = 10 * time.Second
	topLimit     = 10
)

// Module holds the collaborators of the level commands
type Module struct {
	Service *leveling.Service
}

func (m *Module) createRankCommand() *discord.Command {
	return discord.NewCommand(
		"rank",
		"Muestra el nivel de un usuario",
		"level",
		m.rankHandler,
	).WithOptions(&discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: "Usuario a consultar (por defecto tú)",
	}).InGuild().RequiresDatabase()
}

func (m *Module) rankHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}

		user := ctx.GetUserOption("usuario")
		if user == nil {
			user = ctx.User()
		}

		c, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		doc, err := m.Service.Rank(c, ctx.Interaction.GuildID, user.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error consultando nivel de %s: %v", user.ID, err), "Levels")
			_ = ctx.EditReply("❌ No se pudo consultar el nivel.")
			return
		}
		_ = ctx.EditReplyEmbed(RankEmbed(user, doc))
	}()
	return nil
}

func (m *Module) createTopCommand() *discord.Command {
	return discord.NewCommand(
		"top",
		"Muestra el ranking de niveles del servidor",
		"level",
		m.topHandler,
	).InGuild().RequiresDatabase()
}

func (m *Module) topHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}

		c, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		docs, err := m.Service.Top(c, ctx.Interaction.GuildID, topLimit)
		if err != nil {
			logger.Error(fmt.Sprintf("Error consultando ranking de %s: %v", ctx.Interaction.GuildID, err), "Levels")
			_ = ctx.EditReply("❌ No se pudo consultar el ranking.")
			return
		}

		name := ctx.Interaction.GuildID
		if g := ctx.Guild(); g != nil {
			name = g.Name
		}
		_ = ctx.EditReplyEmbed(TopEmbed(name, docs))
	}()
	return nil
}

// RegisterLevelCommands registers /level rank and /level top
func RegisterLevelCommands(client *discord.ExtendedClient, m *Module) {
	group := client.CommandHandler.BuildCommandGroup(
		"level",
		"Comandos de niveles",
		m.createRankCommand(),
		m.createTopCommand(),
	)
	client.CommandHandler.AddGlobalCommand(group)
}
