package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/mqtt"
)

// Pinger is a store that can report its health. *actionlog.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// createStatusCommand creates the /utils status subcommand
func createStatusCommand(store Pinger) *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		func(ctx *discord.CommandContext) error {
			return statusHandler(ctx, store)
		},
	)
}

func onOff(ok bool) string {
	if ok {
		return "🟢 | En linea"
	}
	return "🔴 | Desconectado"
}

// statusHandler handles the /utils status command
func statusHandler(ctx *discord.CommandContext, store Pinger) error {
	go func() {
		defer errors.RecoverMiddleware()()

		levels := "⚪ | No configurado"
		if db := database.Get(); db != nil {
			levels, _ = db.GetStatus()
		}

		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		actions := onOff(store != nil && store.Ping(c) == nil)

		broker := "⚪ | No configurado"
		if mc := mqtt.Get(); mc != nil {
			broker = onOff(mc.IsConnected())
		}

		_ = ctx.Reply(fmt.Sprintf(
			"📊 **Estado del Bot**\n"+
				"• Bot: 🟢 Online\n"+
				"• Registro de acciones: %s\n"+
				"• Niveles: %s\n"+
				"• Broker: %s\n"+
				"• Servidores: %d",
			actions,
			levels,
			broker,
			ctx.Client.GuildCount(),
		))
	}()
	return nil
}
