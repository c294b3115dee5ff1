package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/gardenwatch/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a gardenwatch configuration file without polling.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  gardenwatch validate -c garden.yaml
  gardenwatch validate --config /etc/gardenwatch/garden.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	timeout := cfg.RequestTimeout().String()
	if cfg.RequestTimeout() == 0 {
		timeout = "none"
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Server:            %s\n", cfg.ServerURL)
	fmt.Printf("  Port:              %d\n", cfg.Port)
	fmt.Printf("  Poll interval:     %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Request timeout:   %s\n", timeout)
	fmt.Printf("  Failure threshold: %d\n", cfg.FailureThreshold)
	fmt.Printf("  Watcher ID:        %t\n", cfg.WatcherIDEnabled())
	fmt.Printf("  Counts required:   %t\n", cfg.CountsRequired())
	fmt.Printf("  Reset policy:      %s\n", cfg.ResetPolicy)

	return nil
}
