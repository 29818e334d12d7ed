package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// SessionConfig controls the browser behind a ChromedpSession.
// Headless plus NoSandbox corresponds to the unattended "server" run
// mode; a headed browser is the "local" mode used for debugging runs.
type SessionConfig struct {
	Headless      bool
	NoSandbox     bool
	WindowWidth   int
	WindowHeight  int
	UserAgent     string
	ActionTimeout time.Duration
}

const (
	defaultWindowWidth   = 1920
	defaultWindowHeight  = 1080
	defaultActionTimeout = 30 * time.Second
)

// ChromedpSession implements Session on a single headless-Chrome tab.
// The tab is owned exclusively by one engine run.
type ChromedpSession struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	timeout     time.Duration
	userAgent   string
	logger      *zap.Logger
}

// NewChromedpSession starts a browser and opens one tab. The caller must
// Close the session to tear the browser down.
func NewChromedpSession(ctx context.Context, cfg SessionConfig, logger *zap.Logger) (*ChromedpSession, error) {
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = defaultWindowWidth
	}
	if cfg.WindowHeight <= 0 {
		cfg.WindowHeight = defaultWindowHeight
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = defaultActionTimeout
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &ChromedpSession{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		timeout:     cfg.ActionTimeout,
		userAgent:   cfg.UserAgent,
		logger:      logger,
	}, nil
}

// Close tears down the tab and the browser process.
func (s *ChromedpSession) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	s.tabCancel()
	s.allocCancel()
	return nil
}

// Open navigates the tab to url and waits for the body to be ready.
func (s *ChromedpSession) Open(ctx context.Context, url string) error {
	tasks := chromedp.Tasks{}
	if s.userAgent != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(s.userAgent))
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err := s.run(ctx, tasks); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Find reports whether selector matches an element in the current
// document, returning ErrNotFound when it does not.
func (s *ChromedpSession) Find(ctx context.Context, selector string) error {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Tasks{
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	})
	if err != nil {
		return fmt.Errorf("query %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return fmt.Errorf("%q: %w", selector, ErrNotFound)
	}
	return nil
}

// Click activates the first element matching selector. A selector that
// matches nothing returns ErrNotFound instead of blocking on the click.
func (s *ChromedpSession) Click(ctx context.Context, selector string) error {
	if err := s.Find(ctx, selector); err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.Tasks{chromedp.Click(selector, chromedp.ByQuery)}); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// ScrollIntoView brings the first element matching selector into the
// viewport. Lazy widgets such as the pagination bar only populate once
// visible.
func (s *ChromedpSession) ScrollIntoView(ctx context.Context, selector string) error {
	if err := s.Find(ctx, selector); err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.Tasks{chromedp.ScrollIntoView(selector, chromedp.ByQuery)}); err != nil {
		return fmt.Errorf("scroll to %q: %w", selector, err)
	}
	return nil
}

// Enabled reports whether the first element matching selector is present
// and not disabled.
func (s *ChromedpSession) Enabled(ctx context.Context, selector string) (bool, error) {
	expr := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return !!el && !el.disabled; })()`,
		selector,
	)
	var enabled bool
	if err := s.run(ctx, chromedp.Tasks{chromedp.Evaluate(expr, &enabled)}); err != nil {
		return false, fmt.Errorf("evaluate enabled state of %q: %w", selector, err)
	}
	return enabled, nil
}

// CurrentURL returns the tab's current location.
func (s *ChromedpSession) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, chromedp.Tasks{chromedp.Location(&location)}); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

// HTML returns the rendered document as an HTML string.
func (s *ChromedpSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.Tasks{chromedp.OuterHTML("html", &html, chromedp.ByQuery)}); err != nil {
		return "", fmt.Errorf("read rendered document: %w", err)
	}
	return html, nil
}

func (s *ChromedpSession) run(ctx context.Context, tasks chromedp.Tasks) error {
	taskCtx, cancelTask := context.WithTimeout(s.tabCtx, s.timeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	return chromedp.Run(taskCtx, tasks)
}

// forwardCancel propagates cancellation of the caller's context into the
// chromedp task context, which hangs off the long-lived tab context.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
