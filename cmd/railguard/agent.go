package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"railguard-io/railguard/pkg/agent"
	"railguard-io/railguard/pkg/channels"
	"railguard-io/railguard/pkg/cli"
	"railguard-io/railguard/pkg/config"
	"railguard-io/railguard/pkg/guardrails"
	"railguard-io/railguard/pkg/providers"
	"railguard-io/railguard/pkg/telemetry/logging"
)

var agentFlags struct {
	model       string
	temperature float64
}

var agentCmd = &cobra.Command{
	Use:   "agent [message]",
	Short: "Chat through the guarded agent loop",
	Long: `Chat with the configured LLM provider through the guardrail engine.

Every outbound message is scanned before it reaches the provider:
redact rules rewrite it, block rules refuse it, and prompt rules join
the system prompt as advisory text. The agent resolves tool calls the
model emits before returning its final answer.

With a message argument the agent answers once and exits. Without one
it starts an interactive session; type "exit" to leave.

Examples:
  # One-shot question
  railguard agent "what time is it?"

  # Interactive session
  railguard agent

  # Override the model
  railguard agent --model anthropic/claude-sonnet-4 "hello"`,
	Args: cobra.ArbitraryArgs,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)

	agentCmd.Flags().StringVarP(&agentFlags.model, "model", "m", "", "override provider model")
	agentCmd.Flags().Float64VarP(&agentFlags.temperature, "temperature", "t", 0, "override sampling temperature")
}

func runAgent(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if agentFlags.model != "" {
		cfg.Provider.Model = agentFlags.model
	}
	if agentFlags.temperature != 0 {
		cfg.Provider.Temperature = agentFlags.temperature
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	holder := guardrails.NewHolder(logger)
	snapshot := holder.Reload(guardrails.BuildOptions{
		Enabled:   cfg.Guardrails.Enabled,
		Enforce:   cfg.Guardrails.Enforce,
		Root:      cfg.Guardrails.Dir,
		ExtraDirs: cfg.Guardrails.ExtraDirs,
	})
	logger.Info("guardrails loaded",
		"guardrails", len(snapshot.Catalog),
		"filters", snapshot.Engine.FilterCount(),
	)

	provider := providers.NewOpenRouterClient(cfg.Provider)
	registry := agent.NewRegistry(agent.BuiltinTools()...)
	loop := agent.NewAgent(provider, holder, registry, cfg.Agent, logger, agent.Options{})
	channel := channels.NewCLIChannel(loop, os.Stdin, os.Stdout, logger)

	ctx := cli.SetupSignalHandler()

	if len(args) > 0 {
		reply, err := channel.Send(ctx, strings.Join(args, " "))
		if err != nil {
			return cli.NewCommandError("agent", err)
		}
		fmt.Println(reply)
		return nil
	}

	if err := channel.Listen(ctx); err != nil {
		return cli.NewCommandError("agent", err)
	}
	return nil
}
