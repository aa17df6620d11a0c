package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/spf13/cobra"
	"railguard-io/railguard/pkg/cli"
	"railguard-io/railguard/pkg/config"
	"railguard-io/railguard/pkg/guardrails"
	"railguard-io/railguard/pkg/telemetry/logging"
)

var guardrailsFlags struct {
	format string
	dir    string
}

var guardrailsCmd = &cobra.Command{
	Use:   "guardrails",
	Short: "Inspect and validate guardrail manifests",
	Long: `Inspect and validate guardrail manifests.

Subcommands:
  list - Show the guardrails the current configuration loads
  lint - Validate manifests in a directory without loading them

Examples:
  # Show loaded guardrails
  railguard guardrails list

  # JSON output
  railguard guardrails list --format json

  # Validate a manifest directory
  railguard guardrails lint --dir guardrails/`,
}

var guardrailsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show loaded guardrails",
	Long: `Show the guardrails the current configuration loads, in load
order, with their severity and rule counts.`,
	RunE: listGuardrails,
}

var guardrailsLintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate guardrail manifests",
	Long: `Validate guardrail manifests in a directory.

Each immediate subdirectory is checked for a guardrail.yaml (or .yml)
manifest. Manifests are parsed, validated, and their regex patterns
compiled. The command fails if any manifest is invalid, which the
loader at runtime would merely skip.

Examples:
  # Lint the workspace guardrails directory
  railguard guardrails lint --dir guardrails/`,
	RunE: lintGuardrails,
}

func init() {
	rootCmd.AddCommand(guardrailsCmd)
	guardrailsCmd.AddCommand(guardrailsListCmd)
	guardrailsCmd.AddCommand(guardrailsLintCmd)

	guardrailsListCmd.Flags().StringVar(&guardrailsFlags.format, "format", "text", "output format: text, json")
	guardrailsLintCmd.Flags().StringVarP(&guardrailsFlags.dir, "dir", "d", "", "manifest directory to validate")
}

// guardrailSummary is one row of `guardrails list` output.
type guardrailSummary struct {
	Name        string `json:"name"`
	Severity    string `json:"severity"`
	PromptRules int    `json:"prompt_rules"`
	RegexRules  int    `json:"regex_rules"`
	Source      string `json:"source"`
}

func listGuardrails(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	snapshot := guardrails.Build(guardrails.BuildOptions{
		Enabled:   cfg.Guardrails.Enabled,
		Enforce:   cfg.Guardrails.Enforce,
		Root:      cfg.Guardrails.Dir,
		ExtraDirs: cfg.Guardrails.ExtraDirs,
	}, logger)

	summaries := make([]guardrailSummary, 0, len(snapshot.Catalog))
	for _, g := range snapshot.Catalog {
		summary := guardrailSummary{
			Name:     g.Name,
			Severity: string(g.Severity),
			Source:   g.Source,
		}
		for _, rule := range g.Rules {
			switch rule.Kind {
			case guardrails.KindPrompt:
				summary.PromptRules++
			case guardrails.KindRegex:
				summary.RegexRules++
			}
		}
		summaries = append(summaries, summary)
	}

	if guardrailsFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No guardrails loaded")
		return nil
	}
	fmt.Printf("%-28s %-8s %7s %7s  %s\n", "NAME", "SEVERITY", "PROMPT", "REGEX", "SOURCE")
	for _, s := range summaries {
		fmt.Printf("%-28s %-8s %7d %7d  %s\n", s.Name, s.Severity, s.PromptRules, s.RegexRules, s.Source)
	}
	fmt.Printf("\n%d guardrails, %d compiled filters\n", len(summaries), snapshot.Engine.FilterCount())
	return nil
}

func lintGuardrails(cmd *cobra.Command, args []string) error {
	dir := guardrailsFlags.dir
	if dir == "" {
		return fmt.Errorf("--dir must be specified")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
		}
	}
	sort.Strings(subdirs)

	if len(subdirs) == 0 {
		return fmt.Errorf("no guardrail directories found in %s", dir)
	}

	failures := 0
	for _, sub := range subdirs {
		path, ok := findManifest(filepath.Join(dir, sub))
		if !ok {
			fmt.Printf("✗ %s: no guardrail.yaml manifest\n", sub)
			failures++
			continue
		}

		guardrail, err := guardrails.ParseManifest(path)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", sub, err)
			failures++
			continue
		}

		badPatterns := 0
		for _, rule := range guardrail.Rules {
			if rule.Kind != guardrails.KindRegex {
				continue
			}
			if _, err := regexp.Compile(rule.Pattern); err != nil {
				fmt.Printf("✗ %s: rule %q: invalid pattern: %v\n", sub, rule.Name, err)
				badPatterns++
			}
		}
		if badPatterns > 0 {
			failures++
			continue
		}

		fmt.Printf("✓ %s: %s (%d rules)\n", sub, guardrail.Name, len(guardrail.Rules))
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d guardrails failed validation", failures, len(subdirs))
	}
	fmt.Printf("\nAll %d guardrails valid\n", len(subdirs))
	return nil
}

// findManifest returns the manifest path inside a guardrail directory.
func findManifest(dir string) (string, bool) {
	for _, name := range []string{"guardrail.yaml", "guardrail.yml"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}
