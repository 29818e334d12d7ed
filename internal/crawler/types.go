// Package crawler implements listing discovery: it drives a rendered,
// paginated otodom search listing to completion and emits the offer
// identifiers seen on each page.
package crawler

import (
	"time"
)

// Selectors names every DOM hook the listing engine relies on, so markup
// changes stay a configuration concern rather than a code change.
type Selectors struct {
	CookieAccept string
	NextPage     string
	PageIndex    string
	ListingItem  string
	ListingLink  string
}

// DefaultSelectors returns the selector set for the current otodom markup.
func DefaultSelectors() Selectors {
	return Selectors{
		CookieAccept: "#onetrust-accept-btn-handler",
		NextPage:     `[data-cy="pagination.next-page"]`,
		PageIndex:    `button[data-cy^="pagination.go-to-page-"]`,
		ListingItem:  `li[data-cy="listing-item"]`,
		ListingLink:  `a[data-cy="listing-item-link"]`,
	}
}

// IdentifierBatch is one rendered page's worth of discovered offer ids,
// tagged with the page URL and the wall-clock discovery time. It is
// immutable once built; its lifecycle ends when it is handed to the sink.
type IdentifierBatch struct {
	DiscoveredAt time.Time
	ListingURL   string
	IDs          []string
}

// Summary reports what one listing run did (or, on a dry run, would do).
type Summary struct {
	TotalPages       int
	PagesVisited     int
	Identifiers      int
	EstimatedRuntime time.Duration
}

// Config carries the knobs that shape a listing run.
type Config struct {
	Selectors Selectors
	PageDelay time.Duration
	DryRun    bool
}
