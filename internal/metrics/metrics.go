// Package metrics exposes Prometheus collectors for both engines.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	listingPagesTotal       prometheus.Counter
	identifiersTotal        prometheus.Counter
	offersExtractedTotal    prometheus.Counter
	extractionFailuresTotal *prometheus.CounterVec
	batchFlushesTotal       prometheus.Counter
	batchFlushSize          prometheus.Histogram

	once sync.Once
)

// Init registers the collectors. It is safe to call multiple times.
func Init() {
	once.Do(func() {
		listingPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "otodom_listing_pages_total",
			Help: "Total number of listing pages crawled.",
		})
		identifiersTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "otodom_identifiers_discovered_total",
			Help: "Total number of offer identifiers discovered on listing pages.",
		})
		offersExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "otodom_offers_extracted_total",
			Help: "Total number of offer detail documents successfully extracted.",
		})
		extractionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "otodom_extraction_failures_total",
			Help: "Total number of skipped offers, labeled by failure reason.",
		}, []string{"reason"})
		batchFlushesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "otodom_batch_flushes_total",
			Help: "Total number of field-record batches flushed to storage.",
		})
		batchFlushSize = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "otodom_batch_flush_size",
			Help:    "Histogram of flushed batch sizes.",
			Buckets: []float64{1, 5, 10, 25, 50, 100},
		})
	})
}

// ListingPageCrawled counts one processed listing page.
func ListingPageCrawled() {
	Init()
	listingPagesTotal.Inc()
}

// IdentifiersDiscovered counts identifiers emitted for one page.
func IdentifiersDiscovered(n int) {
	Init()
	identifiersTotal.Add(float64(n))
}

// OfferExtracted counts one successfully extracted detail document.
func OfferExtracted() {
	Init()
	offersExtractedTotal.Inc()
}

// ExtractionFailed counts one skipped offer by reason ("missing_field",
// "transport").
func ExtractionFailed(reason string) {
	Init()
	extractionFailuresTotal.WithLabelValues(reason).Inc()
}

// BatchFlushed counts one flush of n field records.
func BatchFlushed(n int) {
	Init()
	batchFlushesTotal.Inc()
	batchFlushSize.Observe(float64(n))
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
