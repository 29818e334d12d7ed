// Package extract pulls the labeled field set out of a single offer
// detail document.
package extract

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Selectors locates the mandatory anchors and the open-ended attribute
// rows inside a detail document.
type Selectors struct {
	Price      string
	PricePerM2 string
	Address    string
	ParamRow   string
}

// DefaultSelectors returns the selector set for the current otodom markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Price:      `strong[aria-label="Cena"]`,
		PricePerM2: `div[aria-label="Cena za metr kwadratowy"]`,
		Address:    `a[aria-label="Adres"]`,
		ParamRow:   `div.css-1wi2w6s.enb64yk4`,
	}
}

// Fields is the extraction result for one detail document: three
// mandatory anchors plus whatever labeled attribute rows the document
// happens to carry. Two documents may have different Attrs key sets.
type Fields struct {
	Price      string
	PricePerM2 string
	Address    string
	Attrs      map[string]string
}

// ExtractionError reports a detail document that lacks one of the
// mandatory anchor fields. It is the signal for "offer removed or
// redirected" and is distinct from any transport failure.
type ExtractionError struct {
	MissingField string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract: missing mandatory field %q", e.MissingField)
}

// Extractor reads Fields from parsed detail documents. It holds no state
// beyond its selector set and is safe for reuse across documents.
type Extractor struct {
	sel Selectors
}

// New builds an Extractor. Empty selector entries fall back to the
// defaults so callers only override what they need.
func New(sel Selectors) *Extractor {
	def := DefaultSelectors()
	if sel.Price == "" {
		sel.Price = def.Price
	}
	if sel.PricePerM2 == "" {
		sel.PricePerM2 = def.PricePerM2
	}
	if sel.Address == "" {
		sel.Address = def.Address
	}
	if sel.ParamRow == "" {
		sel.ParamRow = def.ParamRow
	}
	return &Extractor{sel: sel}
}

// Extract returns the normalized field set of doc, or an *ExtractionError
// naming the first mandatory anchor that is absent. The call is free of
// side effects; every attribute row visited contributes exactly one Attrs
// entry, with key collisions resolved last-write-wins in document order.
func (e *Extractor) Extract(doc *goquery.Document) (Fields, error) {
	price := doc.Find(e.sel.Price)
	if price.Length() == 0 {
		return Fields{}, &ExtractionError{MissingField: "price"}
	}
	priceM2 := doc.Find(e.sel.PricePerM2)
	if priceM2.Length() == 0 {
		return Fields{}, &ExtractionError{MissingField: "price_m2"}
	}
	address := doc.Find(e.sel.Address)
	if address.Length() == 0 {
		return Fields{}, &ExtractionError{MissingField: "address"}
	}

	fields := Fields{
		Price:      NormalizeValue(price.First().Text()),
		PricePerM2: NormalizeValue(priceM2.First().Text()),
		Address:    NormalizeValue(address.First().Text()),
		Attrs:      make(map[string]string),
	}

	doc.Find(e.sel.ParamRow).Each(func(_ int, row *goquery.Selection) {
		// The human-readable group label sits two levels up from the
		// value node in the otodom markup.
		label := row.Parent().Parent().AttrOr("aria-label", "")
		fields.Attrs[NormalizeKey(label)] = NormalizeValue(row.Text())
	})

	return fields, nil
}
