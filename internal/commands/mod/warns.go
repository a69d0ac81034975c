// Package mod - /mod warns command
package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/bwmarrin/discordgo"
)

// createWarnsCommand creates the /mod warns subcommand
func createWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"Lista las advertencias activas de un usuario",
		"mod",
		warnsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "[STAFF] Usuario a consultar (opcional)",
			Required:    false,
		},
	).RequiresDatabase()
}

// warnsHandler shows the caller's own warns, or another user's to staff holding BanMembers.
func warnsHandler(ctx *discord.CommandContext) error {
	target := ctx.GetUserOption("usuario")
	self := target == nil || target.ID == ctx.User().ID
	if self {
		target = ctx.User()
	}

	if !self {
		member := ctx.Member()
		if member == nil || member.Permissions&(discordgo.PermissionBanMembers|discordgo.PermissionAdministrator) == 0 {
			return ctx.ReplyEphemeral("❌ Solo el staff puede ver las advertencias de otros usuarios.")
		}
	}

	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := commandContext()
		defer cancel()

		now := deps.Service.Now()
		active, err := deps.Service.Engine().GetActiveWarns(c, target.ID, now)
		if err != nil {
			logger.Error(fmt.Sprintf("Error consultando advertencias: %v", err), "CMD-Warns")
			_ = ctx.ReplyEphemeral(storeErrorMessage(err))
			return
		}

		if len(active) == 0 {
			msg := fmt.Sprintf("⭐ %s no tiene advertencias activas.", target.Username)
			if self {
				msg = "⭐ No tienes advertencias activas."
			}
			_ = ctx.ReplyEphemeral(msg)
			return
		}

		_ = ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🔖 - Advertencias activas de %s (%d/%d)", target.Username, len(active), warn.BanThreshold),
			Description: formatWarnList(active, now),
			Color:       colorInfo,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Próxima sanción", Value: warn.PunishmentFor(len(active) + 1).Description()},
			},
			Footer:    &discordgo.MessageEmbedFooter{Text: footerText},
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}()

	return nil
}
