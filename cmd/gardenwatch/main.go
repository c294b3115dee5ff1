// Package main is the entry point for the gardenwatch CLI.
//
// gardenwatch can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	gardenwatch serve -c garden.yaml    # Mirror the garden to a browser dashboard
//	gardenwatch watch -c garden.yaml    # Mirror the garden to the terminal
//	gardenwatch validate -c garden.yaml # Validate configuration
//	gardenwatch version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "gardenwatch",
	Short: "Watch a shared garden",
	Long: `gardenwatch mirrors the state of a garden server.

It polls the server's /api/getUpdates endpoint, validates each update and
shows the garden's age, plant and watcher counts and the garden itself.
After too many consecutive failures it disconnects and waits for you to
press Reconnect.

Quick start:
  1. Create a config file (garden.yaml)
  2. Run: gardenwatch serve -c garden.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  server_url: http://localhost:3000
  poll_interval: 125ms`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if envFile == "" {
			return nil
		}
		// existing environment variables win over the file
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this gardenwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gardenwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "load environment variables from a .env file before reading config")
	rootCmd.AddCommand(versionCmd)
}
