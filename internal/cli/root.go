// Package cli implements the kbctl commands. Login, logout, and the
// protected views all flow through a single session.Manager, so every
// command observes the same session state.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ekrsw/knowledge2/internal/config"
	"github.com/ekrsw/knowledge2/internal/logging"
	"github.com/ekrsw/knowledge2/pkg/session"
)

var (
	flagServer    string
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	cfg     config.Config
	logger  *slog.Logger
	manager *session.Manager
	guard   *session.Guard
)

var rootCmd = &cobra.Command{
	Use:   "kbctl",
	Short: "kbctl - knowledge2 client",
	Long: `kbctl is the command-line client for the knowledge2 service.
Use it to log in, inspect your identity, and manage your account.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}

		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}

		// Flags win over file and environment.
		if cmd.Flags().Changed("server") {
			cfg.ServerURL = flagServer
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = flagLogLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = flagLogFormat
		}

		logger = logging.New(cfg.LogLevel, cfg.LogFormat)

		store, err := newStore()
		if err != nil {
			return err
		}
		manager = session.NewManager(cfg.ServerURL, store, logger)
		guard = session.NewGuard(manager)
		return nil
	},
}

func newStore() (session.Store, error) {
	if cfg.CredentialsPath != "" {
		return session.NewFileStoreAt(cfg.CredentialsPath), nil
	}
	return session.NewFileStore()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", config.Default().ServerURL, "knowledge2 server URL (or KBCTL_SERVER env)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.kbctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(registerCmd)
}
