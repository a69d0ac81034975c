package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set up test environment variables
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("enviroment", "test")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("enviroment")
	}()

	// Reset global config
	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestGet(t *testing.T) {
	resetForTesting()

	// Get should create a new config if none exists
	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	// Get should return the same config on subsequent calls
	config2 := Get()
	if config != config2 {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	// Clear all environment variables
	os.Unsetenv("botToken")
	os.Unsetenv("devGuildId")
	os.Unsetenv("mongodbUrl")
	os.Unsetenv("dbName")
	os.Unsetenv("MQTT_Host")
	os.Unsetenv("MQTT_Port")
	os.Unsetenv("PORT")
	os.Unsetenv("enviroment")

	resetForTesting()
	config, _ := Load()

	// Check default values
	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v, want %v", config.MongoDBURL, "mongodb://localhost:27017")
	}

	if config.DBName != "PancyWarn" {
		t.Errorf("DBName default = %v, want %v", config.DBName, "PancyWarn")
	}

	if config.WarnStore != "sqlite" {
		t.Errorf("WarnStore default = %v, want %v", config.WarnStore, "sqlite")
	}

	if config.StoreTimeout != 5*time.Second {
		t.Errorf("StoreTimeout default = %v, want %v", config.StoreTimeout, 5*time.Second)
	}

	if config.PurgeInterval != 10*time.Minute {
		t.Errorf("PurgeInterval default = %v, want %v", config.PurgeInterval, 10*time.Minute)
	}

	if !config.SerializeWarns {
		t.Error("SerializeWarns default should be true")
	}

	if config.CacheEnabled() {
		t.Error("CacheEnabled() should be false by default")
	}

	if len(config.BadWords) != len(DefaultBadWords) {
		t.Errorf("BadWords default len = %d, want %d", len(config.BadWords), len(DefaultBadWords))
	}

	if config.MQTTHost != "" {
		t.Errorf("MQTTHost default = %v, want empty", config.MQTTHost)
	}

	if config.MQTTPort != "1883" {
		t.Errorf("MQTTPort default = %v, want %v", config.MQTTPort, "1883")
	}

	if config.Port != "3000" {
		t.Errorf("Port default = %v, want %v", config.Port, "3000")
	}

	if config.Environment != "dev" {
		t.Errorf("Environment default = %v, want %v", config.Environment, "dev")
	}
}

func TestWarnSettings(t *testing.T) {
	t.Setenv("WARN_STORE", "Postgres")
	t.Setenv("WARN_STORE_TIMEOUT", "2s")
	t.Setenv("WARN_CACHE_SIZE", "256")
	t.Setenv("WARN_SERIALIZE", "false")
	t.Setenv("BAD_WORDS", " spam , ,scam link")

	resetForTesting()
	config, _ := Load()

	if config.WarnStore != "postgres" {
		t.Errorf("WarnStore = %v, want %v", config.WarnStore, "postgres")
	}
	if config.StoreTimeout != 2*time.Second {
		t.Errorf("StoreTimeout = %v, want %v", config.StoreTimeout, 2*time.Second)
	}
	if !config.CacheEnabled() || config.CacheSize != 256 {
		t.Errorf("CacheSize = %v, want %v", config.CacheSize, 256)
	}
	if config.SerializeWarns {
		t.Error("SerializeWarns = true, want false")
	}
	if want := []string{"spam", "scam link"}; !reflect.DeepEqual(config.BadWords, want) {
		t.Errorf("BadWords = %v, want %v", config.BadWords, want)
	}

	resetForTesting()
}

func TestTypedHelpers(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_BAD_DURATION", "soon")
	t.Setenv("TEST_NEG_DURATION", "-5s")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty")
	t.Setenv("TEST_BOOL", "1")
	t.Setenv("TEST_LIST", ",,")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"getDuration", getDuration("TEST_DURATION", time.Second), 90 * time.Second},
		{"getDuration invalid", getDuration("TEST_BAD_DURATION", time.Second), time.Second},
		{"getDuration negative", getDuration("TEST_NEG_DURATION", time.Second), time.Second},
		{"getInt", getInt("TEST_INT", 1), 42},
		{"getInt invalid", getInt("TEST_BAD_INT", 1), 1},
		{"getBool", getBool("TEST_BOOL", false), true},
		{"getBool missing", getBool("TEST_MISSING_BOOL", true), true},
		{"getList blank", getList("TEST_LIST", []string{"x"}), []string{"x"}},
	}

	for _, tt := range tests {
		if !reflect.DeepEqual(tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}
