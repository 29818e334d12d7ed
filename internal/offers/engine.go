package offers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pgorczak/otodom-crawler/internal/extract"
	"github.com/pgorczak/otodom-crawler/internal/metrics"
)

// Engine scrapes offer detail documents sequentially. One HTTP client
// serves the whole run; the configured per-item delay is the only
// backpressure toward the origin server.
type Engine struct {
	cfg       Config
	fetcher   Fetcher
	extractor *extract.Extractor
	sink      RecordSink
	clock     Clock
	logger    *zap.Logger
}

// NewEngine wires a detail engine from its collaborators.
func NewEngine(cfg Config, fetcher Fetcher, extractor *extract.Extractor, sink RecordSink, clock Clock, logger *zap.Logger) *Engine {
	if cfg.BaseOfferURL == "" {
		cfg.BaseOfferURL = DefaultBaseOfferURL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		sink:      sink,
		clock:     clock,
		logger:    logger,
	}
}

// EstimatedRuntime is the politeness-bound lower bound for scraping n
// identifiers.
func (e *Engine) EstimatedRuntime(n int) time.Duration {
	return time.Duration(n) * e.cfg.ItemDelay
}

// Run scrapes ids in order and returns the number of persisted records.
// Per-item failures (transport or missing mandatory fields) are logged
// and skipped; only storage failures abort the run. On a dry run nothing
// is fetched or written.
func (e *Engine) Run(ctx context.Context, ids []string) (int, error) {
	e.logger.Info("Scraping offers",
		zap.Int("identifiers", len(ids)),
		zap.Duration("estimated_runtime", e.EstimatedRuntime(len(ids))))

	if e.cfg.DryRun {
		e.logger.Info("Dry run, offers not fetched")
		return 0, nil
	}

	buffer := make([]FieldRecord, 0, e.cfg.BatchSize)
	persisted := 0

	for _, id := range ids {
		record, ok := e.scrapeOne(ctx, id)
		if ok {
			buffer = append(buffer, record)
			if len(buffer) == e.cfg.BatchSize {
				if err := e.flush(ctx, buffer); err != nil {
					return persisted, err
				}
				persisted += len(buffer)
				buffer = buffer[:0]
			}
		}
		e.pause(ctx)
	}

	if len(buffer) > 0 {
		if err := e.flush(ctx, buffer); err != nil {
			return persisted, err
		}
		persisted += len(buffer)
	}

	e.logger.Info("Scraping finished", zap.Int("persisted", persisted))
	return persisted, nil
}

// ScrapeURL fetches and extracts a single offer URL. Used by the
// standalone URL mode of the CLI; failures propagate to the caller.
func (e *Engine) ScrapeURL(ctx context.Context, url string) (extract.Fields, error) {
	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return extract.Fields{}, fmt.Errorf("fetch offer %s: %w", url, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return extract.Fields{}, fmt.Errorf("parse offer %s: %w", url, err)
	}
	fields, err := e.extractor.Extract(doc)
	if err != nil {
		return extract.Fields{}, fmt.Errorf("offer %s: %w", url, err)
	}
	return fields, nil
}

// OfferURL derives the detail URL for an identifier.
func (e *Engine) OfferURL(id string) string {
	return strings.TrimSuffix(e.cfg.BaseOfferURL, "/") + "/" + id
}

// scrapeOne fetches and extracts one identifier. It reports ok=false for
// every skip condition; the offending URL is logged so the operator can
// inspect the page by hand.
func (e *Engine) scrapeOne(ctx context.Context, id string) (FieldRecord, bool) {
	url := e.OfferURL(id)

	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Warn("Fetch failed, skipping offer",
			zap.String("url", url), zap.Error(err))
		metrics.ExtractionFailed("transport")
		return FieldRecord{}, false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.logger.Warn("Unparseable document, skipping offer",
			zap.String("url", url), zap.Error(err))
		metrics.ExtractionFailed("parse")
		return FieldRecord{}, false
	}

	fields, err := e.extractor.Extract(doc)
	if err != nil {
		var extErr *extract.ExtractionError
		if errors.As(err, &extErr) {
			e.logger.Warn("Broken offer URL, skipping",
				zap.String("url", url),
				zap.String("missing_field", extErr.MissingField))
			metrics.ExtractionFailed("missing_field")
		} else {
			e.logger.Warn("Extraction failed, skipping offer",
				zap.String("url", url), zap.Error(err))
			metrics.ExtractionFailed("extract")
		}
		return FieldRecord{}, false
	}

	metrics.OfferExtracted()
	return FieldRecord{
		FetchedAt: e.clock.Now(),
		OfferID:   id,
		Fields:    fields,
	}, true
}

func (e *Engine) flush(ctx context.Context, records []FieldRecord) error {
	batch := append([]FieldRecord(nil), records...)
	if err := e.sink.SaveFieldRecords(ctx, batch); err != nil {
		return fmt.Errorf("save field records: %w", err)
	}
	metrics.BatchFlushed(len(batch))
	e.logger.Info("Flushed field records", zap.Int("records", len(batch)))
	return nil
}

// pause applies the politeness delay after every attempted fetch,
// success or failure alike.
func (e *Engine) pause(ctx context.Context) {
	if e.cfg.ItemDelay <= 0 {
		return
	}
	timer := time.NewTimer(e.cfg.ItemDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
