package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"utils",
		statusHandler,
	)
}

// statusHandler handles the /utils status command
func statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = ctx.Reply(fmt.Sprintf(
			"📊 **Estado del Bot**\n"+
				"• Bot: 🟢 Online\n"+
				"• Base de datos: %s\n"+
				"• Servidores: %d",
			storeStatus(c),
			ctx.Client.GuildCount(),
		))
	}()
	return nil
}

func storeStatus(ctx context.Context) string {
	if backend == nil {
		return "🔴 | Sin configurar"
	}
	latency, err := backend.Ping(ctx)
	if err != nil {
		return fmt.Sprintf("🔴 | Desconectado (%s)", backend.Name())
	}
	return fmt.Sprintf("🟢 | En linea (%s, %dms)", backend.Name(), latency.Milliseconds())
}
