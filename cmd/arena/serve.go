package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arena/internal/client"
	"github.com/vovakirdan/arena/internal/config"
	"github.com/vovakirdan/arena/internal/platform/tui"
	"github.com/vovakirdan/arena/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagMaxSessions int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arena SSH gateway",
	Long: `Start an SSH server that lets users play from any terminal.

Each SSH connection gets its own client session against the game server.
Players are identified by their public key, so reconnecting with the same
key keeps the same session id. Match history is stored per-server.

The SSH command picks the route:
  ssh -p 2222 host              # interactive picker
  ssh -p 2222 host quick        # quick match
  ssh -p 2222 host create       # private room (create public for public)
  ssh -p 2222 host join AB12    # join by code

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise uses ssh.host_key_path from the config

Examples:
  arena serve
  arena serve --ssh :2222
  arena serve --max-sessions 8`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().IntVar(&flagMaxSessions, "max-sessions", -1, "Maximum concurrent players (0 = unlimited)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.SSH.HostKeyPath = flagHostKey
	}
	if flagMaxSessions >= 0 {
		cfg.SSH.MaxSessions = flagMaxSessions
	}

	logger := newLogger(os.Stderr, cfg, "arena-ssh")

	var saver client.MatchSaver
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("match history disabled", "error", err)
	} else {
		saver = store
		defer store.Close()
	}

	factory := func(ctx context.Context, sessionID string, l *log.Logger) tui.Starter {
		return newStarter(ctx, cfg, saver, sessionID, l)
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     cfg.SSH.Address,
		HostKeyPath: config.ExpandHome(cfg.SSH.HostKeyPath),
		IdleTimeout: cfg.SSH.IdleTimeout,
		MaxSessions: cfg.SSH.MaxSessions,
		Bell:        cfg.UI.Bell,
		Model:       modelOptions(cfg),
	}, factory, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting arena SSH gateway on %s\n", server.Addr())
	fmt.Printf("Game server: %s\n", cfg.Server.URL)
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		stop()
		os.Exit(1)
	}
}
