package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offerDoc = `
<html><body>
  <strong aria-label="Cena">850 000 zł</strong>
  <div aria-label="Cena za metr kwadratowy">15 454 zł/m²</div>
  <a aria-label="Adres">ul. Krasińskiego, Żoliborz, Warszawa</a>
  <div aria-label="Powierzchnia">
    <div><div class="css-1wi2w6s enb64yk4"> 55 m² </div></div>
  </div>
  <div aria-label="Ogrzewanie / Czynsz">
    <div><div class="css-1wi2w6s enb64yk4">miejskie</div></div>
  </div>
  <div aria-label="Piętro">
    <div><div class="css-1wi2w6s enb64yk4">3/5</div></div>
  </div>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractReadsAnchorsAndAttrs(t *testing.T) {
	t.Parallel()

	fields, err := New(Selectors{}).Extract(parseDoc(t, offerDoc))
	require.NoError(t, err)

	assert.Equal(t, "850 000 zl", fields.Price)
	assert.Equal(t, "15 454 zl/m2", fields.PricePerM2)
	assert.Equal(t, "ul. Krasinskiego, Zoliborz, Warszawa", fields.Address)

	assert.Equal(t, map[string]string{
		"powierzchnia":      "55 m2",
		"ogrzewanie_czynsz": "miejskie",
		"pietro":            "3/5",
	}, fields.Attrs)
}

func TestExtractMissingMandatoryField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		strip   string
		missing string
	}{
		{"no price", `<strong aria-label="Cena">850 000 zł</strong>`, "price"},
		{"no price per m2", `<div aria-label="Cena za metr kwadratowy">15 454 zł/m²</div>`, "price_m2"},
		{"no address", `<a aria-label="Adres">ul. Krasińskiego, Żoliborz, Warszawa</a>`, "address"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := parseDoc(t, strings.Replace(offerDoc, tc.strip, "", 1))

			_, err := New(Selectors{}).Extract(doc)
			var extErr *ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tc.missing, extErr.MissingField)
		})
	}
}

func TestExtractEmptyDocumentFailsOnPriceFirst(t *testing.T) {
	t.Parallel()

	_, err := New(Selectors{}).Extract(parseDoc(t, "<html><body></body></html>"))
	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "price", extErr.MissingField)
}

func TestExtractDuplicateLabelsLastWriteWins(t *testing.T) {
	t.Parallel()

	html := `
<html><body>
  <strong aria-label="Cena">1 zł</strong>
  <div aria-label="Cena za metr kwadratowy">1 zł/m²</div>
  <a aria-label="Adres">Warszawa</a>
  <div aria-label="Stan wykończenia">
    <div><div class="css-1wi2w6s enb64yk4">do remontu</div></div>
  </div>
  <div aria-label="Stan wykończenia">
    <div><div class="css-1wi2w6s enb64yk4">do zamieszkania</div></div>
  </div>
</body></html>`

	fields, err := New(Selectors{}).Extract(parseDoc(t, html))
	require.NoError(t, err)
	assert.Equal(t, "do zamieszkania", fields.Attrs["stan_wykonczenia"])
}
