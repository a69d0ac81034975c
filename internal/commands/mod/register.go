// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"github.com/PancyStudios/PancyWarnGo/internal/sanctions"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
)

// Deps are shared by every /mod subcommand.
type Deps struct {
	Service *sanctions.Service
	Log     sanctions.LogChannel
}

var deps Deps

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient, d Deps) {
	deps = d

	// Create individual subcommands (each can be in its own file)
	banCmd := createBanCommand()
	kickCmd := createKickCommand()
	muteCmd := createMuteCommand()
	warnCmd := createWarnCommand()
	warnsCmd := createWarnsCommand()
	historyCmd := createHistoryCommand()
	removeWarnCmd := createRemoveWarnCommand()
	clearWarnsCmd := createClearWarnsCommand()
	warnInfoCmd := createWarnInfoCommand()

	// Build the /mod command group with all subcommands
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		banCmd,
		kickCmd,
		muteCmd,
		warnCmd,
		warnsCmd,
		historyCmd,
		removeWarnCmd,
		clearWarnsCmd,
		warnInfoCmd,
	)

	// Register the command group
	client.CommandHandler.AddGlobalCommand(modGroup)
}
