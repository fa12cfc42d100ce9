// Package cmd holds the vicai command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vicai",
	Short: "VicAI gateway: keyword filtering and rate limiting in front of an LLM",
	Long: `vicai accepts chat messages over HTTP and WebSocket, rejects unsafe
ones with keyword lists, rate-limits clients and forwards the rest to an
OpenAI-compatible model or the built-in rule engine.`,
	SilenceUsage: true,
}

// Execute runs the root command. Without a subcommand it serves.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = serveCmd.RunE
	rootCmd.AddCommand(serveCmd, checkCmd, migrateCmd, hashPasswordCmd)
}
