package mod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyWarnGo/internal/sanctions"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/PancyStudios/PancyWarnGo/pkg/moderation"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/bwmarrin/discordgo"
)

const (
	colorInfo    = 0x3498DB
	colorWarn    = 0xFFA500
	colorError   = 0xFF0000
	colorSuccess = 0x00FF00

	footerText = "💫 - Developed by PancyStudios"

	// commandTimeout bounds the store work of one command.
	commandTimeout = 10 * time.Second
)

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// storeErrorMessage turns an engine error into what the moderator sees.
func storeErrorMessage(err error) string {
	switch {
	case errors.Is(err, warn.ErrInvalidInput):
		return "❌ Datos inválidos: " + strings.TrimPrefix(err.Error(), "invalid input: ")
	case errors.Is(err, warn.ErrPersistence):
		return "❌ No se pudo acceder a la base de datos. Intenta de nuevo más tarde."
	default:
		return "❌ Ocurrió un error inesperado."
	}
}

func moderator(ctx *discord.CommandContext) *moderation.GuildModerator {
	return moderation.NewGuildModerator(ctx.Session, ctx.Interaction.GuildID)
}

// formatWarnList renders warns as a numbered list.
func formatWarnList(warns []models.Warn, now time.Time) string {
	var sb strings.Builder
	for i, w := range warns {
		status := "🟢"
		if !w.IsActive(now) {
			status = "⚫"
		}
		fmt.Fprintf(&sb, "**%d.** %s ID: `%d` | Por: %s\n", i+1, status, w.ID, sanctions.Issuer(w.IssuerID))
		fmt.Fprintf(&sb, "   Razón: `%s`\n", w.Reason)
		if w.IsActive(now) {
			fmt.Fprintf(&sb, "   Expira: <t:%d:R>\n", w.ExpiresAt.Unix())
		} else {
			fmt.Fprintf(&sb, "   Expiró: <t:%d:R>\n", w.ExpiresAt.Unix())
		}
	}
	return truncate(sb.String(), 4000)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func footer(ctx *discord.CommandContext) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text:    fmt.Sprintf("Solicitado por %s", ctx.User().String()),
		IconURL: ctx.User().AvatarURL(""),
	}
}

// sendDM tells the user about a moderation action. Failures are reported in the channel.
func sendDM(ctx *discord.CommandContext, user *discordgo.User, embed *discordgo.MessageEmbed) {
	channel, err := ctx.Session.UserChannelCreate(user.ID)
	if err == nil {
		if _, err = ctx.Session.ChannelMessageSendEmbed(channel.ID, embed); err == nil {
			return
		}
	}

	msg, err := ctx.Session.ChannelMessageSend(ctx.Interaction.ChannelID, fmt.Sprintf("ℹ️ No se pudo enviar un mensaje directo a **%s**.", user.String()))
	if err != nil {
		return
	}
	go func() {
		time.Sleep(5 * time.Second)
		_ = ctx.Session.ChannelMessageDelete(ctx.Interaction.ChannelID, msg.ID)
	}()
}
