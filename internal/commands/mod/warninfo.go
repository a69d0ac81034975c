// Package mod - /mod warninfo command
package mod

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/bwmarrin/discordgo"
)

func createWarnInfoCommand() *discord.Command {
	return discord.NewCommand(
		"warninfo",
		"Explica cómo funcionan las advertencias y sus sanciones",
		"mod",
		warnInfoHandler,
	)
}

func warnInfoHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeralEmbed(&discordgo.MessageEmbed{
		Title:       "📖 Sistema de advertencias",
		Description: ladderDescription(),
		Color:       colorInfo,
		Footer:      &discordgo.MessageEmbedFooter{Text: footerText},
	})
}

// ladderDescription lists, per active count, the sanction and how long the new warn lasts.
func ladderDescription() string {
	var sb strings.Builder
	sb.WriteString("Cada advertencia expira sola. Cuantas más advertencias activas tengas, más dura la nueva y más fuerte la sanción.\n\n")
	for n := 1; n <= warn.BanThreshold; n++ {
		label := fmt.Sprintf("%d", n)
		if n == warn.BanThreshold {
			label += "+"
		}
		fmt.Fprintf(&sb, "**%s** → %s · expira en %s\n",
			label, warn.PunishmentFor(n).Description(), warn.HumanDuration(warn.ExpiryOffset(n)))
	}
	return sb.String()
}
