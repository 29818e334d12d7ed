// Package offers implements detail extraction and persistence: it turns
// a stream of offer identifiers into extracted field records and flushes
// them to storage in bounded batches.
package offers

import (
	"context"
	"time"

	"github.com/pgorczak/otodom-crawler/internal/extract"
)

// FieldRecord is one offer's extracted field set plus fetch metadata.
// Immutable once created.
type FieldRecord struct {
	FetchedAt time.Time
	OfferID   string
	Fields    extract.Fields
}

// Fetcher retrieves a detail document body over plain HTTP. Detail pages
// need no cookies or rendered JavaScript.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RecordSink receives flushed batches of field records, append-only.
type RecordSink interface {
	SaveFieldRecords(ctx context.Context, records []FieldRecord) error
}

// IdentifierSource is the read path from the ids table: all identifiers
// whose discovery timestamp falls on the given calendar date. It is the
// engines' only coupling, mediated entirely through storage.
type IdentifierSource interface {
	IdentifiersByDate(ctx context.Context, day time.Time) ([]string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Config carries the knobs that shape a scraping run.
type Config struct {
	// BaseOfferURL is joined with an identifier to form the detail URL.
	BaseOfferURL string
	ItemDelay    time.Duration
	BatchSize    int
	DryRun       bool
}

// DefaultBaseOfferURL is the canonical otodom offer path.
const DefaultBaseOfferURL = "https://www.otodom.pl/pl/oferta"

const defaultBatchSize = 50
