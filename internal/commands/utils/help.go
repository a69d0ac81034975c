package utils

import (
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
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
		_ = ctx.Reply(helpText)
	}()
	return nil
}

const helpText = "📖 **Ayuda de PancyWarn Go**\n\n" +
	"**Utilidad:**\n" +
	"• `/utils ping` - Comprueba la latencia\n" +
	"• `/utils status` - Estado del bot\n" +
	"• `/utils stats` - Estadísticas del bot\n\n" +
	"**Advertencias:**\n" +
	"• `/mod warn <usuario> <razón>` - Advierte a un usuario\n" +
	"• `/mod warns [usuario]` - Lista las advertencias activas\n" +
	"• `/mod history <usuario>` - Historial completo de advertencias\n" +
	"• `/mod removewarn <usuario> <id>` - Elimina una advertencia\n" +
	"• `/mod clearwarns <usuario>` - Elimina todas las advertencias\n" +
	"• `/mod warninfo` - Sanciones por cantidad de advertencias\n\n" +
	"**Moderación:**\n" +
	"• `/mod ban <usuario> [razón] [días]` - Banea a un usuario\n" +
	"• `/mod kick <usuario> [razón]` - Expulsa a un usuario\n" +
	"• `/mod mute <usuario> <duración> [razón]` - Silencia a un usuario"
