package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgorczak/otodom-crawler/internal/offers"
)

// SaveFieldRecords appends one flushed batch of field records inside a
// single transaction, so a killed run never leaves a partial batch
// behind. The mandatory anchors get their own columns; the open-ended
// attribute mapping lands in a JSONB column because its key set varies
// per document.
func (s *Store) SaveFieldRecords(ctx context.Context, records []offers.FieldRecord) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("field record store is not configured")
	}
	if len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	create_timestamp,
	offer_id,
	price,
	price_m2,
	address,
	attrs
) VALUES ($1,$2,$3,$4,$5,$6)`, s.paramsTable)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin field record batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, record := range records {
		attrsJSON, err := json.Marshal(normalizeAttrs(record.Fields.Attrs))
		if err != nil {
			return fmt.Errorf("marshal attrs for %s: %w", record.OfferID, err)
		}
		_, err = tx.Exec(ctx, query,
			record.FetchedAt,
			record.OfferID,
			record.Fields.Price,
			record.Fields.PricePerM2,
			record.Fields.Address,
			attrsJSON,
		)
		if err != nil {
			return fmt.Errorf("insert field record %s: %w", record.OfferID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit field record batch: %w", err)
	}
	return nil
}

func normalizeAttrs(attrs map[string]string) map[string]string {
	if attrs == nil {
		return map[string]string{}
	}
	return attrs
}
