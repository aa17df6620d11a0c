package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "railguard",
	Short: "Railguard - manifest-driven guardrail engine for LLM traffic",
	Long: `Railguard is a guardrail engine that enforces declarative compliance
rules on text before it reaches an LLM provider.

Guardrails are YAML manifests loaded from the workspace (and optionally
a shared Git repository). Prompt rules become system-prompt advisory
text; regex rules compile into runtime filters that redact, block, or
flag matching input. Every triggered filter is written to a masked
violation audit trail.

For more information, visit: https://github.com/railguard-io/railguard`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
