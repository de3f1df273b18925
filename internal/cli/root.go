// Package cli implements the nota command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nota-bridge/nota/internal/api"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "nota",
	Short: "Bridge payment notifications to a confirmed ledger",
	Long: `Nota bridges a mobile payment-notification sensor, a chat confirmation
channel, and a durable ledger. Incoming amounts wait as pending transactions
until a single chat reply names them, then land in the ledger.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to config.toml (default ~/.nota/config.toml)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the nota version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "nota %s\n", api.Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
