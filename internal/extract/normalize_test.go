package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  string
	}{
		{"Powierzchnia", "powierzchnia"},
		{"Ogrzewanie / Czynsz", "ogrzewanie_czynsz"},
		{"Obsługa zdalna", "obsluga_zdalna"},
		{"Stan wykończenia", "stan_wykonczenia"},
		{"Piętro", "pietro"},
		{"Powierzchnia działki", "powierzchnia_dzialki"},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeKey(tc.label), "label %q", tc.label)
	}
}

func TestNormalizeKeyIsIdempotent(t *testing.T) {
	t.Parallel()

	labels := []string{"Ogrzewanie / Czynsz", "Obsługa zdalna", "Piętro", "Rynek"}
	for _, label := range labels {
		once := NormalizeKey(label)
		assert.Equal(t, once, NormalizeKey(once), "label %q", label)
	}
}

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "55 m2", NormalizeValue("  55 m²\n"))
	assert.Equal(t, "do zamieszkania", NormalizeValue("do zamieszkania"))
	assert.Equal(t, "ul. Lucka 15, Wola", NormalizeValue(" ul. Łucka 15, Wola "))
}

func TestStripDiacriticsDropsNonASCIILeftovers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "zlm2", StripDiacritics("złm²"))
	assert.Equal(t, "plain ascii", StripDiacritics("plain ascii"))
}
