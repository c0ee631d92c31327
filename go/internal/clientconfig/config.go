// Package clientconfig loads the room client configuration from an optional
// YAML file with environment overrides.
package clientconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full client runtime configuration.
type Config struct {
	// ServerURL is the websocket endpoint of the game server.
	ServerURL string `yaml:"serverUrl"`
	// RoomID is the room to join.
	RoomID string `yaml:"roomId"`
	// Transport picks the channel adapter: "websocket" or "nats".
	Transport string `yaml:"transport"`
	// NATSURL is used when Transport is "nats".
	NATSURL string `yaml:"natsUrl"`
	// StatusAddr is the local status HTTP listen address.
	StatusAddr string `yaml:"statusAddr"`
	// DevicePath is the SQLite device store location.
	DevicePath string `yaml:"devicePath"`
	// Volumes overrides per-cue sound volumes.
	Volumes map[string]float64 `yaml:"volumes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:  "ws://localhost:8080/ws",
		Transport:  "websocket",
		NATSURL:    "nats://localhost:4222",
		StatusAddr: ":8091",
		DevicePath: "justone-device.db",
	}
}

// Load reads the YAML file at path (skipped when path is empty or missing)
// and applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file falls through to defaults plus env.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.ServerURL = getEnv("JUSTONE_SERVER_URL", cfg.ServerURL)
	cfg.RoomID = getEnv("JUSTONE_ROOM_ID", cfg.RoomID)
	cfg.Transport = getEnv("JUSTONE_TRANSPORT", cfg.Transport)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	cfg.StatusAddr = getEnv("JUSTONE_STATUS_ADDR", cfg.StatusAddr)
	cfg.DevicePath = getEnv("JUSTONE_DEVICE_PATH", cfg.DevicePath)

	if cfg.RoomID == "" {
		return Config{}, fmt.Errorf("room id is required (JUSTONE_ROOM_ID or config file)")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
