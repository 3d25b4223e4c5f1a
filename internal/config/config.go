// Package config provides YAML-based configuration loading for the arena
// client.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Config is the complete client configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	World   WorldConfig   `yaml:"world"`
	Input   InputConfig   `yaml:"input"`
	UI      UIConfig      `yaml:"ui"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	SSH     SSHConfig     `yaml:"ssh"`
}

// ServerConfig defines how to reach the game server.
type ServerConfig struct {
	URL           string        `yaml:"url"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	ReadLimit     int64         `yaml:"read_limit"`  // max inbound frame size in bytes
	SendBuffer    int           `yaml:"send_buffer"` // queued outbound frames per connection
	EventBuffer   int           `yaml:"event_buffer"`
}

// WorldConfig describes the server's simulated world.
type WorldConfig struct {
	Canvas float64 `yaml:"canvas"` // side of the square world in world units
}

// InputConfig tunes input handling.
type InputConfig struct {
	KeyHold time.Duration `yaml:"key_hold"` // a key stays held this long after its last repeat
	Buffer  int           `yaml:"buffer"`
}

// UIConfig tunes the terminal renderer.
type UIConfig struct {
	TickRate int           `yaml:"tick_rate"` // frames per second
	Bell     bool          `yaml:"bell"`      // ring on brick breaks and lost balls
	Flash    time.Duration `yaml:"flash"`     // how long a signal stays in the status bar
}

// StorageConfig defines where identity and match history live.
type StorageConfig struct {
	Path         string `yaml:"path"`
	HistoryLimit int    `yaml:"history_limit"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
	File  string `yaml:"file"`  // interactive client log; stderr belongs to the TUI
}

// SSHConfig configures the SSH gateway.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	MaxSessions int           `yaml:"max_sessions"`
}

// Validate reports every problem with the configuration.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.URL) == "" {
		errs = append(errs, errors.New("server.url is empty"))
	} else if !strings.HasPrefix(c.Server.URL, "ws://") && !strings.HasPrefix(c.Server.URL, "wss://") {
		errs = append(errs, fmt.Errorf("server.url %q must use ws:// or wss://", c.Server.URL))
	}
	if c.Server.RetryInterval <= 0 {
		errs = append(errs, errors.New("server.retry_interval must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if c.World.Canvas <= 0 {
		errs = append(errs, errors.New("world.canvas must be positive"))
	}
	if c.Input.KeyHold <= 0 {
		errs = append(errs, errors.New("input.key_hold must be positive"))
	}
	if c.UI.TickRate <= 0 {
		errs = append(errs, errors.New("ui.tick_rate must be positive"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
}

// LogLevel returns the parsed log level, falling back to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
