// Package events provides event handlers for member events
package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterMemberEvents registers all member-related event handlers
func RegisterMemberEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnGuildMemberAdd(onGuildMemberAdd)
	client.EventHandler.OnGuildMemberRemove(onGuildMemberRemove)
}

// onGuildMemberAdd is called when a new member joins the server
func onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	logger.Info(fmt.Sprintf("👋 Nuevo miembro: %s en servidor %s", m.User.Username, m.GuildID), "Member")

	guild, err := s.Guild(m.GuildID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error obteniendo servidor: %v", err), "Member")
		return
	}

	// Enviar mensaje de bienvenida al canal del sistema
	if guild.SystemChannelID != "" {
		welcomeEmbed := &discordgo.MessageEmbed{
			Title:       "¡Bienvenido/a! 🎉",
			Description: fmt.Sprintf("Dale la bienvenida a <@%s>\nAhora somos **%d** miembros.", m.User.ID, guild.MemberCount),
			Color:       0x00ff00,
			Thumbnail: &discordgo.MessageEmbedThumbnail{
				URL: m.User.AvatarURL("128"),
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text:    guild.Name,
				IconURL: guild.IconURL("64"),
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		_, err := s.ChannelMessageSendEmbed(guild.SystemChannelID, welcomeEmbed)
		if err != nil {
			logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Member")
		}
	}
}

// onGuildMemberRemove is called when a member leaves the server
func onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	logger.Info(fmt.Sprintf("👋 Adiós: %s salió del servidor %s", m.User.Username, m.GuildID), "Member")

	// Enviar mensaje de despedida
	guild, err := s.Guild(m.GuildID)
	if err == nil && guild.SystemChannelID != "" {
		farewellEmbed := &discordgo.MessageEmbed{
			Description: fmt.Sprintf("👋 **%s** ha salido del servidor.\nAhora somos **%d** miembros.",
				m.User.Username, guild.MemberCount),
			Color: 0xe74c3c,
			Thumbnail: &discordgo.MessageEmbedThumbnail{
				URL: m.User.AvatarURL("64"),
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		_, sendErr := s.ChannelMessageSendEmbed(guild.SystemChannelID, farewellEmbed)
		if sendErr != nil {
			logger.Error(fmt.Sprintf("Error enviando mensaje de despedida: %v", sendErr), "Member")
		}
	}
}
