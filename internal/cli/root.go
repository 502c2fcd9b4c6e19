// Package cli implements the dvc command line tool: account and room
// management, a live interactive play mode, raw event watching, and an
// embedded server for local games.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/davincicode/client-go/internal/client"
)

var (
	cfg       *Config
	apiClient *client.Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "dvc",
		Short: "CLI client for the deduction card game",
		Long: `dvc is a command line client for the two-player deduction card game.

It talks to the game server's JSON API and event streams: register an
identity, create or join a room, then play interactively or watch the raw
event feed. It can also run its own server for local games.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadSession(); err != nil {
				return err
			}
			apiClient = client.NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: DVC_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file path (env: DVC_SESSION_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
