package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pgorczak/otodom-crawler/internal/metrics"
)

// Engine walks one listing query page by page. It owns its Session for
// the whole run and is strictly sequential: the configured inter-page
// delay is the only backpressure toward the origin server.
type Engine struct {
	cfg     Config
	session Session
	sink    IdentifierSink
	clock   Clock
	pauser  pauseController
	logger  *zap.Logger
}

// NewEngine wires a listing engine from its collaborators.
func NewEngine(cfg Config, session Session, sink IdentifierSink, clock Clock, logger *zap.Logger) *Engine {
	if cfg.Selectors == (Selectors{}) {
		cfg.Selectors = DefaultSelectors()
	}
	return &Engine{
		cfg:     cfg,
		session: session,
		sink:    sink,
		clock:   clock,
		pauser:  &timerPauseController{},
		logger:  logger,
	}
}

// Run drives the listing at listingURL to completion and returns a run
// summary. Scope discovery failures abort the whole query; per-item
// extraction problems are logged and skipped. On a dry run the engine
// stops after scope discovery, reporting the estimated runtime without
// touching the sink.
func (e *Engine) Run(ctx context.Context, listingURL string) (Summary, error) {
	if err := e.session.Open(ctx, listingURL); err != nil {
		return Summary{}, fmt.Errorf("open listing %s: %w", listingURL, err)
	}

	if err := e.dismissCookieBanner(ctx); err != nil {
		return Summary{}, err
	}

	total, err := e.discoverScope(ctx, listingURL)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalPages:       total,
		EstimatedRuntime: time.Duration(total) * e.cfg.PageDelay,
	}
	e.logger.Info("Listing scope discovered",
		zap.Int("total_pages", total),
		zap.Duration("estimated_runtime", summary.EstimatedRuntime))

	if e.cfg.DryRun {
		e.logger.Info("Dry run, skipping page traversal")
		return summary, nil
	}

	for page := 1; page <= total; page++ {
		done, err := e.visitPage(ctx, &summary)
		if err != nil {
			return summary, err
		}
		if done {
			break
		}
	}
	return summary, nil
}

// dismissCookieBanner accepts the consent dialog when it is present.
// Absence means consent was granted on an earlier visit; that is a
// no-op, not a failure.
func (e *Engine) dismissCookieBanner(ctx context.Context) error {
	err := e.session.Click(ctx, e.cfg.Selectors.CookieAccept)
	switch {
	case err == nil:
		e.logger.Info("Accepted cookie banner")
		return nil
	case errors.Is(err, ErrNotFound):
		e.logger.Info("Cookie banner absent, already accepted")
		return nil
	default:
		return fmt.Errorf("dismiss cookie banner: %w", err)
	}
}

// discoverScope locates the pagination control and fixes the total page
// count for the rest of the run. The count is read once; pagination
// controls can render inconsistently across pages, so it is never
// re-derived mid-run.
func (e *Engine) discoverScope(ctx context.Context, listingURL string) (int, error) {
	if err := e.session.Find(ctx, e.cfg.Selectors.NextPage); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("%w: no pagination control on %s", ErrScopeDiscovery, listingURL)
		}
		return 0, fmt.Errorf("locate pagination control: %w", err)
	}
	// The page count only becomes queryable once the pagination widget
	// has been scrolled into the viewport.
	if err := e.session.ScrollIntoView(ctx, e.cfg.Selectors.NextPage); err != nil {
		return 0, fmt.Errorf("scroll to pagination control: %w", err)
	}
	html, err := e.session.HTML(ctx)
	if err != nil {
		return 0, fmt.Errorf("read listing document: %w", err)
	}
	doc, err := parseDocument(html)
	if err != nil {
		return 0, err
	}
	return e.totalPages(doc), nil
}

// visitPage processes the page currently rendered in the session and
// advances to the next one. It reports done=true when the next-page
// control goes disabled, which is authoritative even before the nominal
// last page.
func (e *Engine) visitPage(ctx context.Context, summary *Summary) (bool, error) {
	pageURL, err := e.session.CurrentURL(ctx)
	if err != nil {
		return false, fmt.Errorf("read current url: %w", err)
	}
	e.logger.Info("Crawling listing page", zap.String("url", pageURL))

	if err := e.session.ScrollIntoView(ctx, e.cfg.Selectors.NextPage); err != nil {
		return false, fmt.Errorf("scroll to pagination control: %w", err)
	}
	html, err := e.session.HTML(ctx)
	if err != nil {
		return false, fmt.Errorf("read listing document: %w", err)
	}
	doc, err := parseDocument(html)
	if err != nil {
		return false, err
	}

	batch := IdentifierBatch{
		DiscoveredAt: e.clock.Now(),
		ListingURL:   pageURL,
		IDs:          e.offerIDs(doc, pageURL),
	}
	if err := e.sink.SaveIdentifierBatch(ctx, batch); err != nil {
		return false, fmt.Errorf("save identifier batch: %w", err)
	}
	summary.PagesVisited++
	summary.Identifiers += len(batch.IDs)
	metrics.ListingPageCrawled()
	metrics.IdentifiersDiscovered(len(batch.IDs))
	e.logger.Info("Saved identifier batch",
		zap.String("url", pageURL),
		zap.Int("identifiers", len(batch.IDs)))

	e.pauser.Pause(ctx, e.cfg.PageDelay)

	enabled, err := e.session.Enabled(ctx, e.cfg.Selectors.NextPage)
	if err != nil {
		return false, fmt.Errorf("check next-page control: %w", err)
	}
	if !enabled {
		e.logger.Info("Next-page control disabled, listing exhausted")
		return true, nil
	}
	if err := e.session.Click(ctx, e.cfg.Selectors.NextPage); err != nil {
		return false, fmt.Errorf("advance to next page: %w", err)
	}
	return false, nil
}
