package sanctions

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/bwmarrin/discordgo"
)

const (
	colorWarn    = 0xFFA500
	colorFailure = 0xFF0000
	colorSuccess = 0x00FF00
)

// ChannelSender is the subset of *discordgo.Session used to post log embeds.
type ChannelSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ ChannelSender = (*discordgo.Session)(nil)

// LogChannel posts moderation events to the configured log channel.
// A zero LogChannel drops everything.
type LogChannel struct {
	Sender    ChannelSender
	ChannelID string
}

func (l LogChannel) send(embed *discordgo.MessageEmbed) {
	if l.Sender == nil || l.ChannelID == "" {
		return
	}
	if _, err := l.Sender.ChannelMessageSendEmbed(l.ChannelID, embed); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo enviar al canal de logs: %v", err), "LogChannel")
	}
}

// Warned logs a registered warn. detail is optional extra context, such as the matched word.
func (l LogChannel) Warned(res warn.Result, detail string) {
	l.send(WarnLogEmbed(res, detail))
}

// Punishment logs the outcome of an executed punishment.
func (l LogChannel) Punishment(guildID string, o warn.Outcome) {
	l.send(PunishmentEmbed(o))
}

// Issuer renders who issued a warn.
func Issuer(w *string) string {
	if w == nil {
		return "Sistema"
	}
	return "<@" + *w + ">"
}

// WarnLogEmbed describes a registered warn for the log channel.
func WarnLogEmbed(res warn.Result, detail string) *discordgo.MessageEmbed {
	w := res.Warn
	fields := []*discordgo.MessageEmbedField{
		{Name: "Usuario", Value: "<@" + w.SubjectID + ">", Inline: true},
		{Name: "Moderador", Value: Issuer(w.IssuerID), Inline: true},
		{Name: "Advertencias", Value: fmt.Sprintf("%d/%d", res.ActiveCount, warn.BanThreshold), Inline: true},
		{Name: "Razón", Value: w.Reason},
		{Name: "Sanción", Value: res.Action.Description()},
		{Name: "Expira", Value: fmt.Sprintf("<t:%d:R>", w.ExpiresAt.Unix())},
	}
	if detail != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Detalle", Value: detail})
	}

	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("⚠️ Advertencia #%d", w.ID),
		Color:     colorWarn,
		Fields:    fields,
		Timestamp: w.IssuedAt.Format(time.RFC3339),
	}
}

// PunishmentEmbed describes a punishment outcome.
func PunishmentEmbed(o warn.Outcome) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🔨 Sanción aplicada",
		Color: colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usuario", Value: "<@" + o.SubjectID + ">", Inline: true},
			{Name: "Advertencias", Value: fmt.Sprintf("%d", o.Count), Inline: true},
			{Name: "Sanción", Value: o.Action.Description()},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if o.Err != nil {
		embed.Title = "❌ No se pudo aplicar la sanción"
		embed.Color = colorFailure
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Error", Value: fmt.Sprintf("`%v`", o.Err)})
	}
	return embed
}
