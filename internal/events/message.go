// Package events provides event handlers for message events
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/moderation"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/PancyStudios/PancyWarnGo/pkg/wordfilter"
	"github.com/bwmarrin/discordgo"
)

// FilterReason is the reason stored on warns issued by the word filter.
const FilterReason = "Lenguaje inapropiado"

const filterTimeout = 10 * time.Second

// RegisterMessageEvents registers the bad-word filter. It is a no-op without
// a service or with an empty word list.
func RegisterMessageEvents(client *discord.ExtendedClient, d Deps) {
	if d.Service == nil || d.Filter == nil || d.Filter.Len() == 0 {
		logger.Warn("Filtro de palabras desactivado", "Events")
		return
	}

	client.EventHandler.OnMessageCreate(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		word, ok := screen(m.Message, d.Filter)
		if !ok {
			return
		}
		if client.StoreReady != nil && !client.StoreReady() {
			logger.Warn("Almacén no disponible, se omite el filtro de palabras", "Filter")
			return
		}
		go onBadWord(s, m.Message, word, d)
	})
}

// screen reports the blocked word in m when m is a guild message from a human.
func screen(m *discordgo.Message, f *wordfilter.Filter) (string, bool) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return "", false
	}
	return f.Match(m.Content)
}

func onBadWord(s *discordgo.Session, m *discordgo.Message, word string, d Deps) {
	defer errors.RecoverMiddleware()()

	candidate, err := moderation.ResolveCandidate(s, m.GuildID, m.ChannelID, m.Author)
	if err != nil {
		logger.Error(fmt.Sprintf("Error resolviendo autor %s: %v", moderation.MaskID(m.Author.ID), err), "Filter")
		return
	}
	if !moderation.CanReceiveWarn(candidate) {
		return
	}

	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo borrar el mensaje %s: %v", m.ID, err), "Filter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), filterTimeout)
	defer cancel()

	res, err := d.Service.Warn(ctx, m.GuildID, m.Author.ID, nil, FilterReason)
	if err != nil {
		logger.Error(fmt.Sprintf("Error registrando advertencia automática: %v", err), "Filter")
		return
	}

	logger.Info(fmt.Sprintf("Filtro: %s advertido (%d/%d, %s)",
		moderation.MaskID(m.Author.ID), res.ActiveCount, warn.BanThreshold, res.Action), "Filter")

	if _, err := s.ChannelMessageSend(m.ChannelID, filterNotice(m.Author.ID, res)); err != nil {
		logger.Debug(fmt.Sprintf("Error enviando aviso: %v", err), "Filter")
	}
	d.Log.Warned(res, fmt.Sprintf("Palabra: `%s` | Canal: <#%s>", word, m.ChannelID))
}

// filterNotice is the channel message shown after the filter removed a message.
func filterNotice(userID string, res warn.Result) string {
	return fmt.Sprintf("⚠️ <@%s>, tu mensaje fue eliminado por lenguaje inapropiado. Advertencia **%d/%d** (%s).",
		userID, res.ActiveCount, warn.BanThreshold, res.Action.Description())
}
