package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"railguard-io/railguard/pkg/audit"
	"railguard-io/railguard/pkg/audit/retention"
	"railguard-io/railguard/pkg/audit/storage"
	"railguard-io/railguard/pkg/cli"
	"railguard-io/railguard/pkg/config"
	"railguard-io/railguard/pkg/gateway"
	"railguard-io/railguard/pkg/guardrails"
	"railguard-io/railguard/pkg/guardrails/gitsource"
	"railguard-io/railguard/pkg/telemetry/logging"
	"railguard-io/railguard/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Railguard gateway server",
	Long: `Start the Railguard gateway server with the specified configuration.

The server loads guardrail manifests, compiles the scan engine, and
listens for scan requests on the configured address. When watching is
enabled, manifest changes on disk swap in a new engine generation
without a restart.

Examples:
  # Start with default config
  railguard run

  # Start with custom config
  railguard run --config /etc/railguard/config.yaml

  # Override listen address
  railguard run --listen 0.0.0.0:8080

  # Validate config without starting the server
  railguard run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Gateway.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Railguard v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sync the shared manifest repository before the first load so its
	// guardrails are part of the initial generation.
	buildOpts := buildOptions(cfg, nil)
	if cfg.Guardrails.Enabled && cfg.Guardrails.Repo.URL != "" {
		repo, err := gitsource.NewRepository(gitsource.Config{
			URL:    cfg.Guardrails.Repo.URL,
			Branch: cfg.Guardrails.Repo.Branch,
			Subdir: cfg.Guardrails.Repo.Subdir,
			Token:  cfg.Guardrails.Repo.Token,
		}, logger)
		if err != nil {
			return cli.NewConfigError("guardrails.repo", err.Error())
		}
		if _, err := repo.Sync(ctx); err != nil {
			logger.Warn("manifest repository sync failed, continuing with local guardrails", "error", err)
		} else {
			buildOpts = buildOptions(cfg, repo)
			fmt.Printf("✓ Manifest repository synced (%s)\n", cfg.Guardrails.Repo.URL)
		}
	}

	holder := guardrails.NewHolder(logger)
	snapshot := holder.Reload(buildOpts)
	fmt.Printf("✓ Guardrails loaded (%d guardrails, %d filters)\n",
		len(snapshot.Catalog), snapshot.Engine.FilterCount())

	// Hot reload on manifest changes
	if cfg.Guardrails.Enabled && cfg.Guardrails.Watch {
		watcher, err := guardrails.NewWatcher(holder, buildOpts, logger)
		if err != nil {
			logger.Warn("failed to start manifest watcher", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
					logger.Error("manifest watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
			fmt.Println("✓ Manifest watcher started")
		}
	}

	// Violation audit trail
	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		auditStorage, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path: cfg.Audit.DBPath,
		})
		if err != nil {
			return fmt.Errorf("failed to create audit storage: %w", err)
		}
		defer auditStorage.Close()

		recorder = audit.NewRecorder(auditStorage, &audit.RecorderConfig{
			Enabled: true,
			Buffer:  cfg.Audit.Buffer,
		})
		defer recorder.Close()

		if cfg.Audit.PruneSchedule != "" {
			pruner := retention.NewPruner(auditStorage, retention.Config{
				RetentionDays: cfg.Audit.RetentionDays,
				PruneSchedule: cfg.Audit.PruneSchedule,
			})
			scheduler := retention.NewScheduler(pruner)
			if err := scheduler.Start(ctx); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
			}
		}

		fmt.Println("✓ Audit store initialized")
	}

	var scanMetrics *metrics.ScanMetrics
	if cfg.Telemetry.Metrics.Enabled {
		scanMetrics = metrics.NewScanMetrics(cfg.Telemetry.Metrics)
	}

	srv := gateway.NewServer(cfg.Gateway, holder, recorder, scanMetrics, logger)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Gateway.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Gateway.ListenAddress)
	if scanMetrics != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Gateway.ListenAddress, scanMetrics.Path())
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// buildOptions assembles snapshot build options from configuration.
// When a synced manifest repository is present its checkout joins the
// extra roots after the locally configured ones.
func buildOptions(cfg *config.Config, repo *gitsource.Repository) guardrails.BuildOptions {
	extraDirs := append([]string(nil), cfg.Guardrails.ExtraDirs...)
	if repo != nil {
		extraDirs = append(extraDirs, repo.Dir())
	}
	return guardrails.BuildOptions{
		Enabled:   cfg.Guardrails.Enabled,
		Enforce:   cfg.Guardrails.Enforce,
		Root:      cfg.Guardrails.Dir,
		ExtraDirs: extraDirs,
	}
}
