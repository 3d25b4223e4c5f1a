package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/arena/internal/client"
	"github.com/vovakirdan/arena/internal/handshake"
	"github.com/vovakirdan/arena/internal/platform/tui"
	"github.com/vovakirdan/arena/internal/storage"
)

var (
	flagCreate bool
	flagPublic bool
	flagQuick  bool
	flagJoin   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Join a match",
	Long: `Connect to the game server and enter a room.

Without a route flag an interactive picker is shown.

Controls:
  Left/A, Right/D  - Move your paddle
  Mouse drag       - Move toward the pointer
  Space/Enter      - Toggle ready in the lobby
  Esc              - Leave the match
  Q/Ctrl+C         - Quit

Examples:
  arena play
  arena play --quick
  arena play --create --public
  arena play --join AB12`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagCreate, "create", false, "Create a new room")
	playCmd.Flags().BoolVar(&flagPublic, "public", false, "Make the created room public")
	playCmd.Flags().BoolVar(&flagQuick, "quick", false, "Join the quick-match queue")
	playCmd.Flags().StringVar(&flagJoin, "join", "", "Join the room with this code")
	playCmd.MarkFlagsMutuallyExclusive("create", "quick", "join")
}

// presetIntent turns the route flags into an intent; nil means ask.
func presetIntent() (*handshake.Intent, error) {
	var (
		intent handshake.Intent
		err    error
	)
	switch {
	case flagCreate:
		intent, err = handshake.ParseIntent(handshake.RouteCreate, flagPublic, "")
	case flagQuick:
		intent, err = handshake.ParseIntent(handshake.RouteQuickMatch, false, "")
	case flagJoin != "":
		intent, err = handshake.ParseIntent(handshake.RouteJoin, false, flagJoin)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	preset, err := presetIntent()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg, "arena")

	// Open storage for the session id and match history
	var saver client.MatchSaver
	sessionID := uuid.NewString()
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		// Continue with a throwaway identity and no history
		store = nil
	} else {
		saver = store
		if id, idErr := store.SessionID(); idErr == nil {
			sessionID = id
		} else {
			logger.Warn("using a temporary session id", "error", idErr)
		}
	}

	// Get terminal size early for the first frame
	opts := modelOptions(cfg)
	opts.Width, opts.Height = 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		opts.Width, opts.Height = w, h
	}
	if cfg.UI.Bell {
		opts.Bell = os.Stdout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting client", "server", cfg.Server.URL, "session", sessionID)
	runErr := tui.RunApp(newStarter(ctx, cfg, saver, sessionID, logger), opts, preset)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running client: %v\n", runErr)
		os.Exit(1)
	}
}
