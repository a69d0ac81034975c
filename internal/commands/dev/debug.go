package dev

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/PancyStudios/PancyWarnGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

const debugTimeout = 15 * time.Second

func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Salud del almacén, estadísticas y últimas advertencias",
		"dev",
		statusHandler,
	).WithUserPermissions(discordgo.PermissionAdministrator).AsDev()
}

func createVerifyCommand() *discord.Command {
	return discord.NewCommand(
		"verify",
		"Verifica el esquema y la integridad de las advertencias",
		"dev",
		verifyHandler,
	).WithUserPermissions(discordgo.PermissionAdministrator).AsDev()
}

func createResetCommand() *discord.Command {
	return discord.NewCommand(
		"reset",
		"Elimina TODAS las advertencias",
		"dev",
		resetHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "confirmar",
			Description: "Confirma que quieres borrar todas las advertencias",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).AsDev()
}

// deferred runs fn after deferring an ephemeral reply and edits the reply with its result.
func deferred(ctx *discord.CommandContext, fn func(c context.Context) string) error {
	if err := ctx.DeferEphemeral(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := context.WithTimeout(context.Background(), debugTimeout)
		defer cancel()
		_ = ctx.EditReply(fn(c))
	}()
	return nil
}

func statusHandler(ctx *discord.CommandContext) error {
	userID := ctx.User().ID
	return deferred(ctx, func(c context.Context) string {
		return statusReport(c, userID, time.Now())
	})
}

// statusReport builds the /debug status text for the caller userID.
func statusReport(ctx context.Context, userID string, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("🔍 **Debug del Sistema**\n\n")

	sb.WriteString("**Base de datos:**\n")
	latency, err := deps.Backend.Ping(ctx)
	if err != nil {
		fmt.Fprintf(&sb, "🔴 %s sin conexión: `%v`\n\n", deps.Backend.Name(), err)
	} else {
		fmt.Fprintf(&sb, "🟢 %s en linea (%dms)\n\n", deps.Backend.Name(), latency.Milliseconds())
	}

	sb.WriteString("**Estadísticas:**\n")
	if stats, err := deps.Backend.Stats(ctx, now); err != nil {
		fmt.Fprintf(&sb, "❌ Error: `%v`\n\n", err)
	} else {
		fmt.Fprintf(&sb, "Total: %d | Activas: %d | Expiradas: %d | Usuarios: %d\n\n",
			stats.Total, stats.Active, stats.Expired, stats.Subjects)
	}

	sb.WriteString("**Últimas advertencias:**\n")
	recent, err := deps.Backend.Recent(ctx, 10)
	switch {
	case err != nil:
		fmt.Fprintf(&sb, "❌ Error: `%v`\n", err)
	case len(recent) == 0:
		sb.WriteString("_(No hay advertencias guardadas)_\n")
	default:
		sb.WriteString(recentList(recent, now))
	}

	fmt.Fprintf(&sb, "\n**Tu ID:** `%s`\n", userID)
	if n, err := deps.Engine.CountActiveWarns(ctx, userID, now); err == nil {
		fmt.Fprintf(&sb, "**Tus advertencias activas:** %d\n", n)
	}
	return sb.String()
}

func recentList(warns []models.Warn, now time.Time) string {
	var sb strings.Builder
	for i, w := range warns {
		state := "✅ ACTIVA"
		if !w.IsActive(now) {
			state = "❌ EXPIRADA"
		}
		fmt.Fprintf(&sb, "%d. ID=%d | Usuario=%s | Expira=<t:%d:R> | %s\n",
			i+1, w.ID, moderation.MaskID(w.SubjectID), w.ExpiresAt.Unix(), state)
	}
	return sb.String()
}

func verifyHandler(ctx *discord.CommandContext) error {
	return deferred(ctx, verifyReport)
}

func verifyReport(ctx context.Context) string {
	if err := deps.Backend.Verify(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Verificación fallida: %v", err), "Debug")
		return fmt.Sprintf("❌ **Problemas encontrados en %s:**\n```%v```", deps.Backend.Name(), err)
	}
	return fmt.Sprintf("✅ **%s está OK.**\nEl esquema existe y todas las advertencias son válidas.", deps.Backend.Name())
}

func resetHandler(ctx *discord.CommandContext) error {
	if !ctx.GetBoolOption("confirmar") {
		return ctx.ReplyEphemeral("ℹ️ Reset cancelado. Usa `confirmar:true` para borrar todas las advertencias.")
	}
	user := ctx.User().String()
	return deferred(ctx, func(c context.Context) string {
		return resetReport(c, user)
	})
}

func resetReport(ctx context.Context, requestedBy string) string {
	logger.Warn("Reset de advertencias solicitado por "+requestedBy, "Debug")

	n, err := deps.Backend.Reset(ctx)
	if err != nil {
		logger.Error(fmt.Sprintf("Error en reset: %v", err), "Debug")
		return fmt.Sprintf("❌ Error al resetear: `%v`", err)
	}
	if deps.AfterReset != nil {
		deps.AfterReset()
	}
	return fmt.Sprintf("✅ **Se eliminaron %d advertencias.**\nUsa `/debug verify` para confirmar.", n)
}
