package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes validation
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:           "./data/showdeck.db",
			MigrationsPath: "file://./migrations",
		},
		Logging: LoggingConfig{Level: "info"},
		Player: PlayerConfig{
			SocketPath:     "/tmp/showdeck-player.sock",
			StartupTimeout: 5 * time.Second,
			ReconnectDelay: time.Second,
			Volume:         100,
		},
		Hub: HubConfig{WriteTimeout: 5 * time.Second},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/tmp/showdeck-player.sock", cfg.Player.SocketPath)
	assert.Equal(t, 100, cfg.Player.Volume)
	assert.Equal(t, time.Second, cfg.Player.ReconnectDelay)
	assert.Equal(t, 5*time.Second, cfg.Hub.WriteTimeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SHOWDECK_SERVER_PORT", "9999")
	t.Setenv("SHOWDECK_LOGGING_LEVEL", "debug")
	t.Setenv("SHOWDECK_PLAYER_VOLUME", "55")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 55, cfg.Player.Volume)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"bad read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "invalid read timeout"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"empty socket path", func(c *Config) { c.Player.SocketPath = "" }, "socket path"},
		{"bad startup timeout", func(c *Config) { c.Player.StartupTimeout = 0 }, "startup timeout"},
		{"bad reconnect delay", func(c *Config) { c.Player.ReconnectDelay = 0 }, "reconnect delay"},
		{"volume too high", func(c *Config) { c.Player.Volume = 200 }, "invalid player volume"},
		{"volume negative", func(c *Config) { c.Player.Volume = -1 }, "invalid player volume"},
		{"bad hub timeout", func(c *Config) { c.Hub.WriteTimeout = 0 }, "hub write timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
