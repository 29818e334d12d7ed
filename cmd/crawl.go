package cmd

import (
	"context"
	"fmt"

	"github.com/pgorczak/otodom-crawler/internal/clock/system"
	"github.com/pgorczak/otodom-crawler/internal/config"
	"github.com/pgorczak/otodom-crawler/internal/crawler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which runs
// the listing discovery engine against one paginated query URL.
func newCrawlCmd() *cobra.Command {
	var (
		listingURL string
		wait       int
		runMode    string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a paginated listing query and store discovered offer ids",
		Long: `Renders the given otodom listing query in a browser, walks every
result page through the pagination controls and stores one identifier
batch per page. With --dry-run the page count is discovered and the
runtime estimated without visiting result pages or writing anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listingURL == "" {
				return fmt.Errorf("%w: --listing is required", errUsage)
			}
			if runMode != "local" && runMode != "server" {
				return fmt.Errorf("%w: --run must be local or server, got %q", errUsage, runMode)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("wait") {
				cfg.Listing.WaitSeconds = wait
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			return runCrawl(cmd.Context(), cfg, listingURL, runMode, dryRun)
		},
	}

	cmd.Flags().StringVar(&listingURL, "listing", "", "listing query URL to crawl")
	cmd.Flags().IntVar(&wait, "wait", 5, "seconds to pause between result pages")
	cmd.Flags().StringVar(&runMode, "run", "local", "run mode: local (headed browser) or server (headless)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "estimate the run without visiting result pages")
	return cmd
}

func runCrawl(ctx context.Context, cfg config.Config, listingURL, runMode string, dryRun bool) error {
	logger, err := newRunLogger(cfg, "otodom_listing_crawler", runMode)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	stopMetrics := startMetrics(cfg, logger)
	defer stopMetrics(context.Background())

	// Dry runs never touch the database, so no connection is opened.
	var sink crawler.IdentifierSink = noopIdentifierSink{}
	if !dryRun {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		sink = store
	}

	session, err := crawler.NewChromedpSession(ctx, crawler.SessionConfig{
		Headless:      runMode == "server",
		NoSandbox:     runMode == "server",
		WindowWidth:   cfg.Browser.WindowWidth,
		WindowHeight:  cfg.Browser.WindowHeight,
		UserAgent:     cfg.Browser.UserAgent,
		ActionTimeout: cfg.BrowserActionTimeout(),
	}, logger)
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(context.Background()); cerr != nil {
			logger.Warn("Failed to close browser session", zap.Error(cerr))
		}
	}()

	engine := crawler.NewEngine(crawler.Config{
		Selectors: crawler.DefaultSelectors(),
		PageDelay: cfg.ListingDelay(),
		DryRun:    dryRun,
	}, session, sink, system.New(), logger)

	summary, err := engine.Run(ctx, listingURL)
	if err != nil {
		return fmt.Errorf("listing run: %w", err)
	}

	logger.Info("Listing run finished",
		zap.Int("total_pages", summary.TotalPages),
		zap.Int("pages_visited", summary.PagesVisited),
		zap.Int("identifiers", summary.Identifiers),
		zap.Duration("estimated_runtime", summary.EstimatedRuntime),
	)
	return nil
}

type noopIdentifierSink struct{}

func (noopIdentifierSink) SaveIdentifierBatch(context.Context, crawler.IdentifierBatch) error {
	return nil
}
