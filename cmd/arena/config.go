package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arena/internal/config"
	"github.com/vovakirdan/arena/internal/storage"
)

var flagDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying the config file, .env,
ARENA_* environment variables and flags.

Use --defaults to print the built-in configuration, a good starting point
for ~/.arena/config.yaml.`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

var flagResetID bool

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Show the session id sent to the game server",
	Long: `Show the persistent session id this client sends with every room
request. --reset generates a new one on the next start.`,
	Args: cobra.NoArgs,
	Run:  runIdentity,
}

func init() {
	configCmd.Flags().BoolVar(&flagDefaults, "defaults", false, "Print the built-in defaults")
	identityCmd.Flags().BoolVar(&flagResetID, "reset", false, "Forget the current session id")
	rootCmd.AddCommand(identityCmd)
}

func runConfig(_ *cobra.Command, _ []string) {
	if flagDefaults {
		os.Stdout.Write(config.DefaultYAML())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}

func runIdentity(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagResetID {
		if err := store.ResetSessionID(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	id, err := store.SessionID()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(id)
}
