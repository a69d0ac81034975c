// Package mod - /mod clearwarns command
package mod

import (
	"fmt"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createClearWarnsCommand creates the /mod clearwarns subcommand
func createClearWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"clearwarns",
		"Elimina todas las advertencias de un usuario",
		"mod",
		clearWarnsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a limpiar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).RequiresDatabase()
}

func clearWarnsHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := commandContext()
		defer cancel()

		n, err := deps.Service.Clear(c, user.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error limpiando advertencias: %v", err), "CMD-ClearWarns")
			_ = ctx.EditReply(storeErrorMessage(err))
			return
		}

		logger.Info(fmt.Sprintf("%s eliminó %d advertencias de %s", ctx.User().Username, n, user.Username), "CMD-ClearWarns")

		if n == 0 {
			_ = ctx.EditReply(fmt.Sprintf("⭐ %s no tenía advertencias.", user.Username))
			return
		}
		_ = ctx.EditReply(fmt.Sprintf("✅ Se eliminaron **%d** advertencias de %s.", n, user.Mention()))
	}()

	return nil
}
