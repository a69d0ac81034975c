// Package mod - /mod history command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createHistoryCommand creates the /mod history subcommand
func createHistoryCommand() *discord.Command {
	return discord.NewCommand(
		"history",
		"Muestra todas las advertencias guardadas de un usuario",
		"mod",
		historyHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a consultar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).RequiresDatabase()
}

func historyHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := commandContext()
		defer cancel()

		history, err := deps.Service.Engine().GetWarnHistory(c, user.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error consultando historial: %v", err), "CMD-History")
			_ = ctx.ReplyEphemeral(storeErrorMessage(err))
			return
		}
		if len(history) == 0 {
			_ = ctx.ReplyEphemeral(fmt.Sprintf("⭐ %s no tiene advertencias guardadas.", user.Username))
			return
		}

		_ = ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("📜 - Historial de %s (%d)", user.Username, len(history)),
			Description: formatWarnList(history, deps.Service.Now()),
			Color:       colorInfo,
			Footer:      footer(ctx),
		})
	}()

	return nil
}
