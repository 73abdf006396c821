// Package config provides configuration management for the bot.
// Process-wide settings come from environment variables (optionally a .env file);
// per-guild settings come from a YAML file, see guilds.go.
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken string

	// MongoDB (leveling)
	MongoDBURL string
	DBName     string

	// Action log store (sqlite)
	ActionsDBPath string

	// MQTT
	MQTTHost        string
	MQTTPort        string
	MQTTUser        string
	MQTTPassword    string
	MQTTTopicPrefix string

	// Object store
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
	S3Secure    bool

	// Web Server
	Port            string
	WebAllowedHosts string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string

	// Per-guild settings file
	GuildsConfig string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

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
		BotToken: getEnv("botToken", ""),

		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "PancyMod"),

		ActionsDBPath: getEnv("actionsDbPath", "data/actions.db"),

		// An empty host disables the broker; logs are then fanned out in-process.
		MQTTHost:        getEnv("MQTT_Host", ""),
		MQTTPort:        getEnv("MQTT_Port", "1883"),
		MQTTUser:        getEnv("MQTT_User", ""),
		MQTTPassword:    getEnv("MQTT_Password", ""),
		MQTTTopicPrefix: getEnv("MQTT_TopicPrefix", "pancymod"),

		S3Endpoint:  getEnv("S3_Endpoint", ""),
		S3AccessKey: getEnv("S3_AccessKey", ""),
		S3SecretKey: getEnv("S3_SecretKey", ""),
		S3Bucket:    getEnv("S3_Bucket", "modlogs"),
		S3PublicURL: getEnv("S3_PublicUrl", ""),
		S3Secure:    getEnvBool("S3_Secure", true),

		Port:            getEnv("PORT", "3000"),
		WebAllowedHosts: getEnv("webAllowedHosts", ".*"),

		Environment: getEnv("enviroment", "dev"),

		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),

		GuildsConfig: getEnv("guildsConfig", "guilds.yaml"),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
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

// getEnvBool parses a boolean environment variable, falling back on parse errors
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// BrokerEnabled reports whether an MQTT broker is configured
func (c *Config) BrokerEnabled() bool {
	return c.MQTTHost != ""
}

// ObjectStoreEnabled reports whether attachment uploads can be served
func (c *Config) ObjectStoreEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
