// Package mod - /mod warn command
package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/moderation"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		warnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a advertir",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la advertencia",
			Required:    true,
			MaxLength:   warn.MaxReasonLength,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers | discordgo.PermissionBanMembers).
		RequiresDatabase()
}

// warnHandler handles the /mod warn command
func warnHandler(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeral("❌ Este comando solo funciona en servidores.")
	}

	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	reason := ctx.GetTrimmedOption("razon")
	if reason == "" {
		return ctx.ReplyEphemeral("❌ Debes especificar una razón.")
	}

	issuer := ctx.User()
	if user.ID == issuer.ID {
		return ctx.ReplyEphemeral("❌ No puedes advertirte a ti mismo.")
	}

	candidate, err := moderation.ResolveCandidate(ctx.Session, ctx.Interaction.GuildID, ctx.Interaction.ChannelID, user)
	if err != nil {
		logger.Error(fmt.Sprintf("Error resolviendo miembro %s: %v", moderation.MaskID(user.ID), err), "CMD-Warn")
		return ctx.ReplyEphemeral("❌ No se pudo verificar al usuario. Intenta de nuevo.")
	}
	if candidate.Bot {
		return ctx.ReplyEphemeral("❌ No es posible advertir a bots.")
	}
	if !moderation.CanReceiveWarn(candidate) {
		return ctx.ReplyEphemeral("❌ No es posible advertir a miembros del staff.")
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := commandContext()
		defer cancel()

		issuerID := issuer.ID
		res, err := deps.Service.Warn(c, ctx.Interaction.GuildID, user.ID, &issuerID, reason)
		if err != nil {
			logger.Error(fmt.Sprintf("Error registrando advertencia: %v", err), "CMD-Warn")
			_ = ctx.EditReply(storeErrorMessage(err))
			return
		}

		_ = ctx.EditReplyEmbed(warnResultEmbed(ctx, user, res))
		deps.Log.Warned(res, fmt.Sprintf("Canal: <#%s>", ctx.Interaction.ChannelID))

		sendDM(ctx, user, &discordgo.MessageEmbed{
			Title: "⚠️ - Has recibido una advertencia",
			Color: colorWarn,
			Description: fmt.Sprintf(
				"⚒ - **Servidor:** %s\n"+
					"📝 - **Razón:** %s\n"+
					"📊 - **Advertencias activas:** %d/%d\n"+
					"⚡ - **Sanción:** %s\n"+
					"🕒 - **Expira:** <t:%d:R>",
				ctx.GuildName(), res.Warn.Reason, res.ActiveCount, warn.BanThreshold,
				res.Action.Description(), res.Warn.ExpiresAt.Unix(),
			),
			Footer: &discordgo.MessageEmbedFooter{Text: footerText},
		})
	}()

	return nil
}

func warnResultEmbed(ctx *discord.CommandContext, user *discordgo.User, res warn.Result) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "⚠️ Advertencia aplicada",
		Color: colorWarn,
		Description: fmt.Sprintf(
			"👤 **Usuario:** %s\n"+
				"📝 **Razón:** `%s`\n"+
				"📊 **Advertencias activas:** **%d/%d**\n"+
				"⚡ **Sanción:** %s\n"+
				"🕒 **Expira:** <t:%d:R> (%s)",
			user.Mention(),
			res.Warn.Reason,
			res.ActiveCount, warn.BanThreshold,
			res.Action.Description(),
			res.Warn.ExpiresAt.Unix(), warn.HumanDuration(warn.ExpiryOffset(res.ActiveCount)),
		),
		Footer:    footer(ctx),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
