package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pgorczak/otodom-crawler/internal/crawler"
)

// SaveIdentifierBatch appends one listing page's identifiers via COPY.
// Duplicates across pages are passed through untouched; the table is
// dedupe-tolerant by contract.
func (s *Store) SaveIdentifierBatch(ctx context.Context, batch crawler.IdentifierBatch) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("identifier store is not configured")
	}
	if len(batch.IDs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(batch.IDs))
	for _, id := range batch.IDs {
		rows = append(rows, []any{batch.DiscoveredAt, batch.ListingURL, id})
	}
	copied, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{s.idsTable},
		[]string{"create_timestamp", "listing_url", "offer_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy identifier batch: %w", err)
	}
	if copied != int64(len(batch.IDs)) {
		return fmt.Errorf("copy identifier batch: wrote %d of %d rows", copied, len(batch.IDs))
	}
	return nil
}

// IdentifiersByDate returns every identifier discovered on the given
// calendar day, in insertion order.
func (s *Store) IdentifiersByDate(ctx context.Context, day time.Time) ([]string, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("identifier store is not configured")
	}
	query := fmt.Sprintf(
		`SELECT offer_id FROM %s WHERE date(create_timestamp) = $1`,
		s.idsTable,
	)
	rows, err := s.pool.Query(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query identifiers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identifiers: %w", err)
	}
	return ids, nil
}
