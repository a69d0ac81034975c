// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken     string
	DevGuildID   string
	LogChannelID string

	// Warn store
	WarnStore   string
	MongoDBURL  string
	DBName      string
	PostgresURL string
	SQLitePath  string
	RedisURL    string

	// Warn engine
	StoreTimeout      time.Duration
	PurgeInterval     time.Duration
	CacheSize         int
	CacheTTL          time.Duration
	SerializeWarns    bool
	PunishmentTimeout time.Duration
	BadWords          []string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port         string
	AllowedHosts string
	APIToken     string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
	GuildsWebhook     string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// DefaultBadWords is used when BAD_WORDS is not set.
var DefaultBadWords = []string{
	"arrombado",
	"arrombada",
	"filho da puta",
	"filha da puta",
	"hijo de puta",
	"vai tomar no cu",
	"vtmnc",
	"pau no cu",
	"pnc",
	"buceta",
	"discord.gg/",
}

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:     getEnv("botToken", ""),
		DevGuildID:   getEnv("devGuildId", ""),
		LogChannelID: getEnv("LOG_CHANNEL_ID", ""),

		// Warn store
		WarnStore:   strings.ToLower(getEnv("WARN_STORE", "sqlite")),
		MongoDBURL:  getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:      getEnv("dbName", "PancyWarn"),
		PostgresURL: getEnv("POSTGRES_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "data/warns.db"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// Warn engine
		StoreTimeout:      getDuration("WARN_STORE_TIMEOUT", 5*time.Second),
		PurgeInterval:     getDuration("WARN_PURGE_INTERVAL", 10*time.Minute),
		CacheSize:         getInt("WARN_CACHE_SIZE", 0),
		CacheTTL:          getDuration("WARN_CACHE_TTL", time.Minute),
		SerializeWarns:    getBool("WARN_SERIALIZE", true),
		PunishmentTimeout: getDuration("PUNISHMENT_TIMEOUT", 15*time.Second),
		BadWords:          getList("BAD_WORDS", DefaultBadWords),

		// MQTT
		MQTTHost:     getEnv("MQTT_Host", ""),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		// Web Server
		Port:         getEnv("PORT", "3000"),
		AllowedHosts: getEnv("ALLOWED_HOSTS", `^(localhost|127\.0\.0\.1)(:\d+)?$|^(.+\.)?pancybot\.(net|xyz)$`),
		APIToken:     getEnv("API_TOKEN", ""),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Webhooks
		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
		GuildsWebhook:     getEnv("guildsWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses values like "5s" or "10m". Invalid values fall back to the default.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultValue
}

// getList splits a comma separated value, dropping blank items.
func getList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// CacheEnabled reports whether the active-warn cache should wrap the store.
func (c *Config) CacheEnabled() bool {
	return c.CacheSize > 0
}
