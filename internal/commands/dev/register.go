// Package dev provides the /debug commands, registered only in the dev guild.
package dev

import (
	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
)

// Deps are what the debug commands inspect.
type Deps struct {
	Backend database.Maintenance
	Engine  *warn.Engine
	// AfterReset runs once a reset succeeded, for example to flush caches.
	AfterReset func()
}

var deps Deps

// Register registers /debug status, /debug verify and /debug reset as dev guild commands.
func Register(client *discord.ExtendedClient, d Deps) {
	deps = d

	debugGroup := client.CommandHandler.BuildCommandGroup(
		"debug",
		"Diagnóstico del almacén de advertencias",
		createStatusCommand(),
		createVerifyCommand(),
		createResetCommand(),
	)

	client.CommandHandler.AddDevCommand(debugGroup)
}
