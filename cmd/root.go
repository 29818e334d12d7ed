// Package cmd defines and implements the CLI commands for the
// otodom-crawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pgorczak/otodom-crawler/internal/api"
	"github.com/pgorczak/otodom-crawler/internal/config"
	"github.com/pgorczak/otodom-crawler/internal/logging"
	"github.com/pgorczak/otodom-crawler/internal/metrics"
	"github.com/pgorczak/otodom-crawler/internal/storage/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errUsage marks flag and validation failures so Execute can exit with
// status 2 instead of the generic run-failure status 1.
var errUsage = errors.New("invalid usage")

var (
	cfgFile   string
	credsFile string
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otodom-crawler",
		Short: "Discovers otodom listing offers and extracts their detail fields",
		Long: `otodom-crawler runs two engines against the otodom.pl portal:

  crawl   renders a paginated listing query in a browser, walks its
          result pages and stores the discovered offer identifiers
  offers  fetches the detail page of every identifier discovered on a
          given day, extracts its fields and stores them in batches`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, optional)")
	cmd.PersistentFlags().StringVar(&credsFile, "credentials", "", "database credentials file (overrides db.credentials_file)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	cmd.AddCommand(newCrawlCmd(), newOffersCmd())
	return cmd
}

// Execute is the main entry point. Usage errors exit with status 2, run
// failures with status 1.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	return cfg, nil
}

// newRunLogger builds the tee logger for one engine run and tags every
// entry with a fresh run id.
func newRunLogger(cfg config.Config, app, label string) (*zap.Logger, error) {
	logger, err := logging.New(logging.Options{
		App:         app,
		RunLabel:    label,
		Dir:         cfg.Logging.Dir,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger.With(zap.String("run_id", uuid.NewString())), nil
}

// openStore connects to Postgres using the positional credentials file.
func openStore(ctx context.Context, cfg config.Config) (*postgres.Store, error) {
	path := cfg.DB.CredentialsFile
	if credsFile != "" {
		path = credsFile
	}
	creds, err := config.LoadCredentials(path)
	if err != nil {
		return nil, err
	}
	store, err := postgres.NewStore(ctx, postgres.Config{
		DSN:         creds.DSN(),
		IDsTable:    cfg.DB.IDsTable,
		ParamsTable: cfg.DB.ParamsTable,
		MaxConns:    cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return store, nil
}

// startMetrics exposes /metrics and /healthz when enabled. The returned
// stop func is a no-op otherwise.
func startMetrics(cfg config.Config, logger *zap.Logger) func(context.Context) {
	if !cfg.Metrics.Enabled {
		return func(context.Context) {}
	}
	metrics.Init()
	srv := api.NewServer(cfg.Metrics.Addr, logger)
	srv.Start()
	return func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}
}
