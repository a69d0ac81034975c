package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
)

// createPingCommand creates the /utils ping subcommand
func createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Comprueba la latencia de Discord y del almacén de advertencias",
		"utils",
		pingHandler,
	)
}

func pingHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = ctx.Reply(pingMessage(ctx.Client.Session.HeartbeatLatency(), storeLatency(c)))
	}()
	return nil
}

// storeLatency returns -1 when the backend is missing or unreachable.
func storeLatency(ctx context.Context) time.Duration {
	if backend == nil {
		return -1
	}
	latency, err := backend.Ping(ctx)
	if err != nil {
		return -1
	}
	return latency
}

func pingMessage(gateway, store time.Duration) string {
	storePart := "sin conexión"
	if store >= 0 {
		storePart = fmt.Sprintf("%dms", store.Milliseconds())
	}
	return fmt.Sprintf("🏓 Pong! PancyWarn | Gateway: %dms | Advertencias: %s", gateway.Milliseconds(), storePart)
}
