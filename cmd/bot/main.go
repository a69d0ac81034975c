// Package main is the entry point for the PancyWarn bot.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyWarnGo/internal/commands"
	"github.com/PancyStudios/PancyWarnGo/internal/events"
	"github.com/PancyStudios/PancyWarnGo/internal/sanctions"
	"github.com/PancyStudios/PancyWarnGo/pkg/config"
	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/discord"
	"github.com/PancyStudios/PancyWarnGo/pkg/errors"
	"github.com/PancyStudios/PancyWarnGo/pkg/locks"
	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/moderation"
	"github.com/PancyStudios/PancyWarnGo/pkg/mqtt"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/PancyStudios/PancyWarnGo/pkg/web"
	"github.com/PancyStudios/PancyWarnGo/pkg/wordfilter"
	"golang.org/x/sync/errgroup"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
	pingTimeout     = 2 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando PancyWarn %s...", config.Version), "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	if err := run(cfg); err != nil {
		logger.Critical(err.Error(), "Main")
		log.Close()
		os.Exit(1)
	}

	logger.System("PancyWarn detenido", "Main")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
		stop()
	})

	// Warn store
	openCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	backend, err := database.Open(openCtx, database.Options{
		Kind:        cfg.WarnStore,
		MongoURL:    cfg.MongoDBURL,
		DBName:      cfg.DBName,
		PostgresURL: cfg.PostgresURL,
		SQLitePath:  cfg.SQLitePath,
	})
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando el almacén: %v", err), "Main")
		}
	}()

	var (
		store warn.Store = backend
		cache *warn.CachedStore
	)
	if cfg.CacheEnabled() {
		cache = warn.NewCachedStore(backend, cfg.CacheSize, cfg.CacheTTL)
		store = cache
		logger.Info(fmt.Sprintf("Caché de advertencias activa (%d sujetos, ttl %s)", cfg.CacheSize, cfg.CacheTTL), "Main")
	}

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	engine := warn.NewEngine(store, warn.Options{
		StoreTimeout: cfg.StoreTimeout,
		Locker:       locker,
	})

	// Initialize MQTT
	mqttClientID := "pancywarn"
	if !cfg.IsProd() {
		mqttClientID = "pancywarn_canary"
	}
	mqttClient := mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
	defer mqttClient.Destroy()

	if err := mqtt.ServeWarns(mqttClient, engine, time.Now); err != nil {
		logger.Warn(fmt.Sprintf("No se pudieron servir las consultas MQTT: %v", err), "Main")
	}

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("creating Discord client: %w", err)
	}
	discordClient.StoreReady = func() bool {
		c, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		_, err := backend.Ping(c)
		return err == nil
	}

	logChannel := sanctions.LogChannel{Sender: discordClient.Session, ChannelID: cfg.LogChannelID}
	svc := sanctions.New(engine, sanctions.Options{
		Moderators: func(guildID string) warn.Moderator {
			return moderation.NewGuildModerator(discordClient.Session, guildID)
		},
		Events:            mqtt.NewEvents(mqttClient),
		Notify:            logChannel.Punishment,
		PunishmentTimeout: cfg.PunishmentTimeout,
	})

	purger := warn.NewPurger(engine, cfg.PurgeInterval)
	purger.Start()

	// Initialize web server
	webServer := web.NewServer(web.Options{
		WebhookURL:   cfg.LogsWebServerHook,
		AllowedHosts: cfg.AllowedHosts,
	})
	web.SetupAPIRoutes(webServer, web.Deps{
		Engine:   engine,
		Backend:  backend,
		Hooks:    svc,
		APIToken: cfg.APIToken,
	})
	if cfg.APIToken == "" {
		logger.Warn("API_TOKEN vacío: la API de advertencias queda desactivada", "Main")
	}

	commands.RegisterAll(discordClient, commands.Deps{
		Service: svc,
		Backend: backend,
		Log:     logChannel,
		AfterReset: func() {
			if cache != nil {
				cache.Flush()
			}
		},
	})

	events.RegisterAll(discordClient, events.Deps{
		Service: svc,
		Filter:  wordfilter.New(cfg.BadWords),
		Log:     logChannel,
	})

	// Start the bot
	if err := discordClient.Start(); err != nil {
		purger.Stop()
		return fmt.Errorf("starting Discord client: %w", err)
	}

	logger.Success("PancyWarn iniciado correctamente!", "Main")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webServer.Start(cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.System("Apagando PancyWarn...", "Main")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := webServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("Error apagando el servidor web: %v", err), "Main")
		}
		if err := discordClient.Stop(); err != nil {
			logger.Error(fmt.Sprintf("Error desconectando de Discord: %v", err), "Main")
		}
		purger.Stop()
		svc.Wait()
		return nil
	})

	return g.Wait()
}

// newLocker picks the lock that serializes RegisterWarn per subject: Redis when
// configured, otherwise an in-process mutex unless serialization is disabled.
func newLocker(ctx context.Context, cfg *config.Config) (warn.Locker, func(), error) {
	if cfg.RedisURL != "" {
		rl, err := locks.NewRedisLocker(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to Redis: %w", err)
		}
		logger.Info("Bloqueo distribuido por sujeto activo (Redis)", "Main")
		return rl, func() { _ = rl.Close() }, nil
	}
	if !cfg.SerializeWarns {
		logger.Warn("WARN_SERIALIZE=false: los registros concurrentes no se serializan", "Main")
		return nil, func() {}, nil
	}
	return warn.NewKeyedMutex(), func() {}, nil
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
