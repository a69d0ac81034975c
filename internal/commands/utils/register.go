package utils

import (
	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
)

var backend database.Maintenance

// RegisterUtilsCommands registers the /utils subcommands. b backs /utils status
// and may be nil.
func RegisterUtilsCommands(client *discord.ExtendedClient, b database.Maintenance) {
	backend = b

	pingCmd := createPingCommand()
	statusCmd := createStatusCommand()
	helpCmd := createHelpCommand()
	statsCmd := createStatsCommand()

	utilsGroup := client.CommandHandler.BuildCommandGroup(
		"utils",
		"Comandos de utilidad",
		pingCmd,
		statusCmd,
		helpCmd,
		statsCmd,
	)

	client.CommandHandler.AddGlobalCommand(utilsGroup)
}
