package mod

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// createRemoveWarnCommand creates the /mod removewarn subcommand
func createRemoveWarnCommand() *discord.Command {
	return discord.NewCommand(
		"removewarn",
		"Elimina una advertencia específica de un usuario",
		"mod",
		removeWarnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario del cual eliminar la advertencia",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "id",
			Description:  "ID de la advertencia a eliminar",
			Required:     true,
			Autocomplete: true,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).WithAutoComplete(removeWarnAutoComplete).RequiresDatabase()
}

// removeWarnHandler handles the /mod removewarn command
func removeWarnHandler(ctx *discord.CommandContext) error {
	targetUser := ctx.GetUserOption("usuario")
	if targetUser == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario válido.")
	}

	warnID, err := strconv.ParseInt(ctx.GetTrimmedOption("id"), 10, 64)
	if err != nil || warnID <= 0 {
		return ctx.ReplyEphemeral("❌ El ID de la advertencia debe ser un número.")
	}

	if err := ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "🗑️ Eliminando advertencia...",
		Description: fmt.Sprintf("Eliminando advertencia de **%s**...\n\nEspere un momento...", targetUser.String()),
		Color:       0xFFFF00,
		Footer:      footer(ctx),
		Timestamp:   time.Now().Format(time.RFC3339),
	}); err != nil {
		logger.Error(fmt.Sprintf("Error enviando reply inicial: %v", err), "CMD-RemoveWarn")
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := commandContext()
		defer cancel()

		// The id must belong to the chosen user.
		history, err := deps.Service.Engine().GetWarnHistory(c, targetUser.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error DB RemoveWarn: %v", err), "CMD-RemoveWarn")
			_ = ctx.EditReply(storeErrorMessage(err))
			return
		}

		target, found := findWarn(history, warnID)
		if !found {
			_ = ctx.EditReply("❌ No se encontró una advertencia con ese ID para este usuario.")
			return
		}

		removed, err := deps.Service.Remove(c, warnID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error eliminando advertencia %d: %v", warnID, err), "CMD-RemoveWarn")
			_ = ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Title:       "❌ Error al eliminar advertencia",
				Description: storeErrorMessage(err),
				Color:       colorError,
			})
			return
		}
		if !removed {
			_ = ctx.EditReply("❌ La advertencia ya había sido eliminada.")
			return
		}

		_ = ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title:       "✅ Advertencia eliminada con éxito",
			Description: fmt.Sprintf("La advertencia de **%s** ha sido eliminada.\n\n**Razón original:** %s\n**ID:** `%d`", targetUser.String(), target.Reason, warnID),
			Color:       colorSuccess,
			Footer:      footer(ctx),
			Timestamp:   time.Now().Format(time.RFC3339),
		})

		sendDM(ctx, targetUser, &discordgo.MessageEmbed{
			Title: "ℹ - Advertencia eliminada",
			Color: colorSuccess,
			Description: fmt.Sprintf(
				"⚒ - **Servidor:** %s (%s)\n"+
					"🗑 ️ - **Advertencia eliminada:** %s\n\n"+
					"🕒 - **Fecha:** <t:%d:F>",
				ctx.GuildName(), ctx.Interaction.GuildID, target.Reason, time.Now().Unix(),
			),
			Footer: &discordgo.MessageEmbedFooter{Text: footerText},
		})
	}()

	return nil
}

func findWarn(warns []models.Warn, id int64) (models.Warn, bool) {
	for _, w := range warns {
		if w.ID == id {
			return w, true
		}
	}
	return models.Warn{}, false
}

// warnChoices builds autocomplete choices from warns, filtered by what the user typed.
func warnChoices(warns []models.Warn, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.TrimSpace(typed)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
	for _, w := range warns {
		if len(choices) == 25 {
			break
		}
		id := strconv.FormatInt(w.ID, 10)
		if typed != "" && !strings.HasPrefix(id, typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("ID: %s - Razón: %s", id, w.Reason), 100),
			Value: id,
		})
	}
	return choices
}

// removeWarnAutoComplete suggests the selected user's active warns
func removeWarnAutoComplete(ctx *discord.CommandContext) {
	go func() {
		defer errors.RecoverMiddleware()()

		targetUser := ctx.GetUserOption("usuario")
		if targetUser == nil {
			_ = ctx.SendAutoCompleteChoices(nil)
			return
		}

		c, cancel := commandContext()
		defer cancel()

		active, err := deps.Service.Engine().GetActiveWarns(c, targetUser.ID, deps.Service.Now())
		if err != nil {
			logger.Warn(fmt.Sprintf("Autocompletado sin datos: %v", err), "CMD-RemoveWarn")
			_ = ctx.SendAutoCompleteChoices(nil)
			return
		}

		typed := ""
		if focused := ctx.FocusedOption(); focused != nil {
			typed, _ = focused.Value.(string)
		}
		_ = ctx.SendAutoCompleteChoices(warnChoices(active, typed))
	}()
}
