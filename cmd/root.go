package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"

	config    = viper.New()
	appConfig internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chat-session",
	Short: "Terminal client for a remote AI chat service",
	Long: `A terminal client for a remote AI chat service.

Run without a subcommand to open the interactive chat. Your current
conversation is remembered between runs, and past conversations held by
the server can be browsed, exported and deleted.

Quick Start:
  chat-session                           # Open the interactive chat
  chat-session send "hello there"        # One-shot message in the current chat
  chat-session list                      # List conversations on the server
  chat-session show                      # Print the current conversation
  chat-session new                       # Start a new conversation

Configuration is read from flags, CHAT_SESSION_* environment variables and
config.yaml in ., ~/.chat-session or the user config directory.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	RunE:    runChat,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := internal.ReadConfigFile(config, cfgFile); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := internal.LoadConfig(config)
	if err != nil {
		return err
	}

	logCfg := cfg.LogConfig()
	// the TUI owns the terminal; logs only go to --log-file
	logCfg.Discard = cmd == rootCmd || cmd == chatCmd
	if err := internal.InitLogger(logCfg); err != nil {
		return err
	}

	appConfig = cfg
	internal.LogDebug("Using API %s, state %s", cfg.APIURL, cfg.StatePath)
	return nil
}

// app is what a command needs to talk to the backend and the local state
type app struct {
	chat   *internal.Chat
	client *internal.APIClient
	store  *internal.SQLiteStore
}

func openApp() (*app, error) {
	store, err := internal.OpenSQLiteStore(appConfig.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	client := internal.NewAPIClient(appConfig.APIURL, appConfig.Timeout)
	return &app{
		chat:   internal.NewChat(client, store),
		client: client,
		store:  store,
	}, nil
}

// persistedSession returns the stored session id without creating one
func (a *app) persistedSession(ctx context.Context) (string, bool) {
	id, ok, err := a.store.Get(ctx, internal.SessionIDKey)
	if err != nil {
		internal.LogWarn("Failed to read persisted session id: %v", err)
		return "", false
	}
	return id, ok && id != ""
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		internal.LogWarn("Failed to close state store: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRunE = loadConfig

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: config.yaml in ., ~/.chat-session or the user config dir)")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.String("api-url", internal.DefaultAPIURL, "Chat service base URL")
	flags.String("state", internal.DefaultStatePath(), "Path to the local state database")
	flags.Duration("timeout", internal.DefaultTimeout, "Timeout for each request to the chat service")
	flags.String("log-level", "", "Log level (error, warn, info, debug)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("log-file", "", "Also write logs to this file, rotated")

	internal.SetConfigDefaults(config)
	for _, name := range []string{"verbose", "api-url", "state", "timeout", "log-level", "log-format", "log-file"} {
		if err := config.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
