package crawler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// parseDocument turns a rendered HTML snapshot into a goquery document.
func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing document: %w", err)
	}
	return doc, nil
}

// totalPages reads every go-to-page control and returns the highest page
// number observed. A listing with no page-index controls is a single-page
// result set, so the count is 1 by policy, not an error.
func (e *Engine) totalPages(doc *goquery.Document) int {
	total := 1
	doc.Find(e.cfg.Selectors.PageIndex).Each(func(_ int, s *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(s.Text()))
		if err != nil {
			return
		}
		if n > total {
			total = n
		}
	})
	return total
}

// offerIDs extracts the offer identifier from every listing item on the
// page, preserving document order. Items whose link is missing or
// structurally malformed are skipped at item granularity and logged;
// they never abort the page.
func (e *Engine) offerIDs(doc *goquery.Document, pageURL string) []string {
	var ids []string
	doc.Find(e.cfg.Selectors.ListingItem).Each(func(i int, item *goquery.Selection) {
		href, ok := item.Find(e.cfg.Selectors.ListingLink).First().Attr("href")
		if !ok {
			e.logger.Warn("Listing item has no offer link, skipping",
				zap.Int("item", i),
				zap.String("page_url", pageURL))
			return
		}
		id := lastPathSegment(href)
		if id == "" {
			e.logger.Warn("Listing item link has no identifier segment, skipping",
				zap.Int("item", i),
				zap.String("href", href),
				zap.String("page_url", pageURL))
			return
		}
		ids = append(ids, id)
	})
	return ids
}

// lastPathSegment returns the final path segment of href, or "" when the
// link carries no usable identifier.
func lastPathSegment(href string) string {
	trimmed := strings.TrimSuffix(href, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
