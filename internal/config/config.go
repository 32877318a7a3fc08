// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort     = 8080
	defaultServerHost     = "0.0.0.0"
	defaultReadTimeout    = 30 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultDatabasePath   = "./data/showdeck.db"
	defaultMigrationsPath = "file://./migrations"
	defaultLogLevel       = "info"
	defaultLogPretty      = false

	defaultPlayerBinary         = ""
	defaultPlayerSocketPath     = "/tmp/showdeck-player.sock"
	defaultPlayerStartupTimeout = 5 * time.Second
	defaultPlayerReconnectDelay = 1 * time.Second
	defaultPlayerVolume         = 100

	defaultHubWriteTimeout = 5 * time.Second

	envPrefix = "SHOWDECK"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Player   PlayerConfig
	Hub      HubConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// PlayerConfig holds media player supervisor configuration
type PlayerConfig struct {
	// Binary optionally pins the player executable path; when empty the
	// supervisor falls back to well-known locations and then PATH.
	Binary         string
	SocketPath     string
	StartupTimeout time.Duration
	ReconnectDelay time.Duration
	Volume         int
}

// HubConfig holds broadcast hub configuration
type HubConfig struct {
	WriteTimeout time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/showdeck")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.migrationspath", defaultMigrationsPath)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("player.binary", defaultPlayerBinary)
	v.SetDefault("player.socketpath", defaultPlayerSocketPath)
	v.SetDefault("player.startuptimeout", defaultPlayerStartupTimeout)
	v.SetDefault("player.reconnectdelay", defaultPlayerReconnectDelay)
	v.SetDefault("player.volume", defaultPlayerVolume)

	v.SetDefault("hub.writetimeout", defaultHubWriteTimeout)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Player.SocketPath == "" {
		return fmt.Errorf("player socket path must not be empty")
	}
	if c.Player.StartupTimeout <= 0 {
		return fmt.Errorf("invalid player startup timeout: %v (must be > 0)", c.Player.StartupTimeout)
	}
	if c.Player.ReconnectDelay <= 0 {
		return fmt.Errorf("invalid player reconnect delay: %v (must be > 0)", c.Player.ReconnectDelay)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 100 {
		return fmt.Errorf("invalid player volume: %d (must be between 0 and 100)", c.Player.Volume)
	}

	if c.Hub.WriteTimeout <= 0 {
		return fmt.Errorf("invalid hub write timeout: %v (must be > 0)", c.Hub.WriteTimeout)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
