// Package events provides a registry for organizing bot events.
// Events are organized by category (guild, member, message, shard).
package events

import (
	"github.com/PancyStudios/PancyWarnGo/internal/sanctions"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/wordfilter"
)

// Deps holds what the event handlers need beyond the client.
type Deps struct {
	Service *sanctions.Service
	Filter  *wordfilter.Filter
	Log     sanctions.LogChannel
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, d Deps) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client)

	// Member events (join/leave)
	RegisterMemberEvents(client)

	// Bad-word filter
	RegisterMessageEvents(client, d)

	// Shard disconnect/resume
	RegisterShardEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
