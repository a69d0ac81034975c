package events

import (
	"fmt"

	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterShardEvents logs gateway drops. While a shard is down the word
// filter sees no messages, so no automatic warns are issued for it.
func RegisterShardEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnDisconnect(onShardDisconnect)
	client.EventHandler.OnResumed(onShardResumed)
}

func onShardDisconnect(s *discordgo.Session, _ *discordgo.Disconnect) {
	logger.Warn(shardMessage(s.ShardID, false), "Shard")
}

func onShardResumed(s *discordgo.Session, _ *discordgo.Resumed) {
	logger.Success(shardMessage(s.ShardID, true), "Shard")
}

func shardMessage(shardID int, up bool) string {
	if up {
		return fmt.Sprintf("✅ PancyWarn shard %d reanudado, el filtro automático vuelve a estar activo.", shardID)
	}
	return fmt.Sprintf("🔌 PancyWarn shard %d desconectado, el filtro automático queda en pausa.", shardID)
}
