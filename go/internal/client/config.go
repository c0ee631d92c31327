package client

import "time"

// Config holds the tunables of one room client.
type Config struct {
	// RoomID is the room joined on init.
	RoomID string

	// ReloadDelay is how long to wait before asking the reloader to restart
	// after a reload or auth-required event.
	ReloadDelay time.Duration

	// SettingsDebounce is the quiet period applied to numeric setting
	// changes before they are emitted as set-param.
	SettingsDebounce time.Duration
}

// DefaultConfig returns default client configuration.
func DefaultConfig() Config {
	return Config{
		ReloadDelay:      3 * time.Second,
		SettingsDebounce: 100 * time.Millisecond,
	}
}
