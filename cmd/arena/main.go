// arena is a terminal client for four-seat arena pong.
//
// Usage:
//
//	arena play               - Pick a route and play
//	arena play --quick       - Join the quick-match queue
//	arena play --create      - Create a private room (--public for public)
//	arena play --join CODE   - Join a room by code
//	arena serve              - Start the SSH gateway
//	arena history            - Show recent matches
//	arena config             - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.arena/config.yaml)
//	--server <url>      - Game server WebSocket URL
//	--db <path>         - Database path (default: ~/.arena/arena.db)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arena/internal/config"
)

var (
	// Global flags
	flagConfigPath string
	flagServerURL  string
	flagDBPath     string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Arena - Four-player pong in your terminal",
	Long: `Arena is a terminal client for a server-authoritative, four-player
pong and brick-breaker match. Every player sees the field rotated so their
own paddle sits at the bottom.

Available commands:
  play     - Join a match
  serve    - Start the SSH gateway for remote players
  history  - View your recent matches
  config   - Print the effective configuration

Examples:
  arena play --quick
  arena play --join AB12
  arena play --server wss://arena.example.com/ws
  arena serve --ssh :2222
  arena history --limit 50`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Game server WebSocket URL")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the arena database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig resolves the configuration: file, then .env and ARENA_*
// variables, then command-line flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return cfg, err
	}

	if err := config.LoadEnv(); err != nil {
		return cfg, err
	}
	config.ApplyEnv(&cfg)

	if flagServerURL != "" {
		cfg.Server.URL = flagServerURL
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
