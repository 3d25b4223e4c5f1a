package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arena.yaml
var defaultArenaYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultArenaYAML))
	copy(out, defaultArenaYAML)
	return out
}

// Default returns the hardcoded default configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:           "ws://localhost:8080/ws",
			RetryInterval: 2 * time.Second,
			WriteTimeout:  3 * time.Second,
			ReadLimit:     1 << 20,
			SendBuffer:    16,
			EventBuffer:   64,
		},
		World: WorldConfig{
			Canvas: 576,
		},
		Input: InputConfig{
			KeyHold: 250 * time.Millisecond,
			Buffer:  64,
		},
		UI: UIConfig{
			TickRate: 30,
			Bell:     true,
			Flash:    600 * time.Millisecond,
		},
		Storage: StorageConfig{
			Path:         "~/.arena/arena.db",
			HistoryLimit: 20,
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.arena/arena.log",
		},
		SSH: SSHConfig{
			Address:     ":2222",
			HostKeyPath: ".ssh/arena_host_ed25519",
			IdleTimeout: 30 * time.Minute,
			MaxSessions: 32,
		},
	}
}
