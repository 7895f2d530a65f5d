// Package cmd holds the marketledger subcommands.
package cmd

import (
	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "marketledger",
	Short: "In-memory marketplace ledger",
	Long: `Marketledger keeps buyer and seller accounts, moves money between them
and records what was bought.

Subcommands:
  serve   - Run the http api with periodic snapshots
  report  - Print an analytics report computed from the last snapshot`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "./configs", "directory holding app.env")
}
