package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zig-Index/registry/internal/catalog"
	"github.com/Zig-Index/registry/internal/config"
	"github.com/Zig-Index/registry/internal/discovery"
	"github.com/Zig-Index/registry/internal/github"
	"github.com/Zig-Index/registry/internal/ledger"
	"github.com/Zig-Index/registry/internal/logger"
	"github.com/Zig-Index/registry/internal/syncer"
)

var (
	// Set by goreleaser
	version = "dev"

	// Global flags
	cfgFile string
	verbose bool
	dryRun  bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "registry",
	Short: "Mirror Zig package metadata from GitHub into a local catalog",
	Long: `registry incrementally mirrors repositories tagged zig-package or
zig-application into a local, file-addressable catalog: one JSON document
per repository plus a reconciliation ledger, so subsequent runs only do
incremental work.

A GitHub access token must be provided via ` + config.TokenEnvVar + `.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one discovery, reconciliation, and sync pass",
	Long: `Sync discovers repositories through the package and application topic
searches, classifies each against the ledger as new, updated, or removed,
and fetches full details for the new and updated queues in batches. The
ledger is flushed after every batch; removed repositories are reported but
never deleted.`,
	RunE: runSync,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(*cobra.Command, []string) {
		fmt.Printf("registry %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "registry.toml", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify repositories without fetching details or writing files")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(versionCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	client := github.NewClient(ctx, cfg.Token)
	client.SetPageSize(cfg.PageSize)

	login, err := client.ValidateCredentials(ctx)
	if err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}
	if remaining, limit, err := client.RateQuota(ctx); err == nil {
		logger.Info("authenticated", "login", login, "graphql_remaining", remaining, "graphql_limit", limit)
	} else {
		logger.Info("authenticated", "login", login)
	}

	led, err := ledger.Load(cfg.LedgerPath)
	if err != nil {
		return err
	}
	logger.Info("ledger loaded", "path", cfg.LedgerPath, "tracked", len(led.Repos))

	engine := discovery.NewEngine(client, cfg.PagePause())
	fetcher := syncer.NewFetcher(client, catalog.NewStore(cfg.CatalogRoot))
	orchestrator := syncer.NewOrchestrator(engine, fetcher, led, syncer.Options{
		BatchSize:    cfg.BatchSize,
		BatchPause:   cfg.BatchPause(),
		LedgerPath:   cfg.LedgerPath,
		ExtraQueries: cfg.ExtraQueries,
		DryRun:       dryRun,
	})

	if err := orchestrator.Run(ctx); err != nil {
		return err
	}
	logger.Info("fetch totals", "processed", fetcher.Processed(), "skipped", fetcher.Skipped())
	return nil
}
