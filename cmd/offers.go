package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pgorczak/otodom-crawler/internal/clock/system"
	"github.com/pgorczak/otodom-crawler/internal/config"
	"github.com/pgorczak/otodom-crawler/internal/extract"
	"github.com/pgorczak/otodom-crawler/internal/offers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newOffersCmd creates and configures the 'offers' subcommand, which
// runs the detail extraction engine in one of two modes: a day-scoped
// batch over previously discovered identifiers, or a single URL whose
// extracted fields are printed instead of stored.
func newOffersCmd() *cobra.Command {
	var (
		date      string
		offerURL  string
		wait      int
		batchSize int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "offers",
		Short: "Extract and store detail fields for discovered offers",
		Long: `Fetches the detail page of every offer identifier discovered on the
given calendar day, extracts its fields and stores them in batches.
With --url a single detail page is fetched and its extracted fields
printed to stdout; nothing is stored. With --dry-run the identifiers
are counted and the runtime estimated without fetching anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (date == "") == (offerURL == "") {
				return fmt.Errorf("%w: exactly one of --date or --url is required", errUsage)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("wait") {
				cfg.Offers.WaitSeconds = wait
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.Offers.BatchSize = batchSize
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			if offerURL != "" {
				return runScrapeURL(cmd.Context(), cfg, offerURL)
			}
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("%w: --date must be formatted YYYY-MM-DD, got %q", errUsage, date)
			}
			return runOffers(cmd.Context(), cfg, day, dryRun)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "discovery date (YYYY-MM-DD) whose identifiers to scrape")
	cmd.Flags().StringVar(&offerURL, "url", "", "single offer URL to extract and print")
	cmd.Flags().IntVar(&wait, "wait", 1, "seconds to pause between detail fetches")
	cmd.Flags().IntVar(&batchSize, "batch-size", 50, "records buffered before each storage flush")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "estimate the run without fetching anything")
	return cmd
}

func runOffers(ctx context.Context, cfg config.Config, day time.Time, dryRun bool) error {
	logger, err := newRunLogger(cfg, "otodom_offers_scrapper", day.Format("20060102"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	stopMetrics := startMetrics(cfg, logger)
	defer stopMetrics(context.Background())

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ids, err := store.IdentifiersByDate(ctx, day)
	if err != nil {
		return fmt.Errorf("load identifiers: %w", err)
	}
	logger.Info("Loaded discovered identifiers",
		zap.String("date", day.Format("2006-01-02")),
		zap.Int("count", len(ids)),
	)

	engine := newOffersEngine(cfg, dryRun, store, logger)
	stored, err := engine.Run(ctx, ids)
	if err != nil {
		return fmt.Errorf("offers run: %w", err)
	}
	logger.Info("Offers run finished", zap.Int("stored", stored))
	return nil
}

func runScrapeURL(ctx context.Context, cfg config.Config, url string) error {
	logger, err := newRunLogger(cfg, "otodom_offers_scrapper", "url")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine := newOffersEngine(cfg, false, noopRecordSink{}, logger)
	fields, err := engine.ScrapeURL(ctx, url)
	if err != nil {
		return err
	}
	printFields(fields)
	return nil
}

func newOffersEngine(cfg config.Config, dryRun bool, sink offers.RecordSink, logger *zap.Logger) *offers.Engine {
	fetcher := offers.NewCollyFetcher(offers.FetcherConfig{
		UserAgent: cfg.Browser.UserAgent,
	})
	return offers.NewEngine(offers.Config{
		BaseOfferURL: cfg.Offers.BaseURL,
		ItemDelay:    cfg.OfferDelay(),
		BatchSize:    cfg.Offers.BatchSize,
		DryRun:       dryRun,
	}, fetcher, extract.New(extract.DefaultSelectors()), sink, system.New(), logger)
}

func printFields(fields extract.Fields) {
	fmt.Printf("price: %s\n", fields.Price)
	fmt.Printf("price_m2: %s\n", fields.PricePerM2)
	fmt.Printf("address: %s\n", fields.Address)

	keys := make([]string, 0, len(fields.Attrs))
	for k := range fields.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, fields.Attrs[k])
	}
}

type noopRecordSink struct{}

func (noopRecordSink) SaveFieldRecords(context.Context, []offers.FieldRecord) error {
	return nil
}
