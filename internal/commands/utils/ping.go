package utils

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
)

// createPingCommand creates the /utils ping subcommand
func createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Comprueba la latencia del bot",
		"utils",
		pingHandler,
	)
}

// pingHandler handles the /utils ping command
func pingHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		latency := ctx.Client.Session.HeartbeatLatency().Milliseconds()
		dbLatency := "N/A"
		if db := database.Get(); db != nil {
			if d, err := db.Ping(); err == nil {
				dbLatency = fmt.Sprintf("%dms", d.Milliseconds())
			}
		}
		_ = ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: %dms | Base de datos: %s", latency, dbLatency))
	}()
	return nil
}
