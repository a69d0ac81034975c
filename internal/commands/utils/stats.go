package utils

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/config"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/bwmarrin/discordgo"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Muestra estadísticas del bot y de las advertencias",
		"utils",
		statsHandler,
	)
}

// processStats is the runtime half of /utils stats.
type processStats struct {
	allocBytes uint64
	goroutines int
	cpus       int
	uptime     time.Duration
	guilds     int
	members    int
}

func statsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		ps := processStats{
			allocBytes: m.Alloc,
			goroutines: runtime.NumGoroutine(),
			cpus:       runtime.NumCPU(),
			uptime:     time.Since(ctx.Client.StartTime),
			guilds:     ctx.Client.GuildCount(),
		}
		for _, guild := range ctx.Session.State.Guilds {
			ps.members += guild.MemberCount
		}

		embed := &discordgo.MessageEmbed{
			Title:  "📊 Estadísticas de PancyWarn",
			Color:  0x5865F2,
			Fields: append(processFields(ps), warnFields(c, time.Now())...),
			Footer: &discordgo.MessageEmbedFooter{
				Text:    "💫 - Developed by PancyStudios",
				IconURL: ctx.Client.Session.State.User.AvatarURL(""),
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		_ = ctx.ReplyEmbed(embed)
	}()
	return nil
}

func processFields(ps processStats) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		{Name: "🤖 Versión", Value: config.Version, Inline: true},
		{Name: "🐹 Go / DiscordGo", Value: fmt.Sprintf("%s / %s", strings.TrimPrefix(runtime.Version(), "go"), discordgo.VERSION), Inline: true},
		{Name: "🖥 Uso de RAM", Value: fmt.Sprintf("%.2f MB", float64(ps.allocBytes)/1024/1024), Inline: true},
		{Name: "⚙ Goroutines", Value: fmt.Sprintf("%d / %d CPUs", ps.goroutines, ps.cpus), Inline: true},
		{Name: "⏱ Uptime", Value: formatDuration(ps.uptime), Inline: true},
		{Name: "🏠 Servidores", Value: fmt.Sprintf("%d (%d miembros)", ps.guilds, ps.members), Inline: true},
	}
}

// warnFields summarizes the warn backend as of now. A missing or failing
// backend yields a single status field.
func warnFields(ctx context.Context, now time.Time) []*discordgo.MessageEmbedField {
	if backend == nil {
		return []*discordgo.MessageEmbedField{{Name: "💾 Almacén", Value: "🔴 | Sin configurar"}}
	}
	st, err := backend.Stats(ctx, now)
	if err != nil {
		return []*discordgo.MessageEmbedField{{Name: "💾 Almacén", Value: fmt.Sprintf("🔴 | Error leyendo %s", backend.Name())}}
	}
	return []*discordgo.MessageEmbedField{
		{Name: "💾 Almacén", Value: backend.Name(), Inline: true},
		{Name: "⚠️ Advertencias", Value: fmt.Sprintf("Total: %d | Activas: %d | Expiradas: %d", st.Total, st.Active, st.Expired)},
		{Name: "👤 Usuarios advertidos", Value: fmt.Sprintf("%d", st.Subjects), Inline: true},
		{Name: "🔨 Ban automático", Value: fmt.Sprintf("Al llegar a %d activas", warn.BanThreshold), Inline: true},
	}
}

// formatDuration formats a time.Duration into a human-readable string
func formatDuration(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d días", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d horas", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutos", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%d segundos", seconds))
	}
	if len(parts) == 0 {
		return "0 segundos"
	}

	return strings.Join(parts, ", ")
}
