// Package commands wires every slash command category into the client.
package commands

import (
	"github.com/PancyStudios/PancyWarnGo/internal/commands/dev"
	"github.com/PancyStudios/PancyWarnGo/internal/commands/mod"
	"github.com/PancyStudios/PancyWarnGo/internal/commands/utils"
	"github.com/PancyStudios/PancyWarnGo/internal/sanctions"
	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
)

// Deps holds what the command categories need beyond the client.
type Deps struct {
	Service *sanctions.Service
	Backend database.Maintenance
	Log     sanctions.LogChannel
	// AfterReset runs after /debug reset wiped the store.
	AfterReset func()
}

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, d Deps) {
	// Utility commands (/ping, /stats, /status, /help)
	utils.RegisterUtilsCommands(client, d.Backend)

	// Moderation commands (/mod warn, /mod warns, /mod ban, ...)
	mod.RegisterModCommands(client, mod.Deps{Service: d.Service, Log: d.Log})

	// Store diagnostics, dev guild only
	dev.Register(client, dev.Deps{
		Backend:    d.Backend,
		Engine:     d.Service.Engine(),
		AfterReset: d.AfterReset,
	})
}
