package utils

import (
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
)

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

// helpHandler handles the /utils help command
func helpHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()
		_ = ctx.ReplyEphemeral(
			"📖 **Ayuda de PancyMod**\n\n" +
				"**Moderación:**\n" +
				"• `/mod menu <usuario>` - Abre el menú de moderación\n" +
				"• `/mod ban|kick|timeout|warn|note <usuario>` - Acciones rápidas\n" +
				"• `/mod history <usuario>` - Historial de un usuario\n" +
				"• `/mod revoke <id>` / `/mod hide <id>` - Revoca u oculta un caso\n" +
				"• `/mod attach <id> <imagen>` - Adjunta evidencias\n\n" +
				"**Niveles:**\n" +
				"• `/level rank [usuario]` - Nivel y XP\n" +
				"• `/level top` - Ranking del servidor\n\n" +
				"**Utilidad:**\n" +
				"• `/utils ping` - Comprueba la latencia\n" +
				"• `/utils status` - Estado de los servicios\n" +
				"• `/utils stats` - Estadísticas del bot",
		)
	}()
	return nil
}
