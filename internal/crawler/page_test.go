package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTotalPagesTakesMaxObservedControl(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(Config{}, nil, nil)

	// Controls rendered out of order still yield the maximum.
	doc, err := parseDocument(`<html><body><nav>
		<button data-cy="pagination.go-to-page-3">3</button>
		<button data-cy="pagination.go-to-page-12">12</button>
		<button data-cy="pagination.go-to-page-2">2</button>
	</nav></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, 12, engine.totalPages(doc))
}

func TestTotalPagesWithoutControlsIsOne(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(Config{}, nil, nil)
	doc, err := parseDocument(`<html><body><nav></nav></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.totalPages(doc))
}

func TestTotalPagesIgnoresNonNumericControls(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(Config{}, nil, nil)
	doc, err := parseDocument(`<html><body>
		<button data-cy="pagination.go-to-page-2">2</button>
		<button data-cy="pagination.go-to-page-x">…</button>
	</body></html>`)
	require.NoError(t, err)
	assert.Equal(t, 2, engine.totalPages(doc))
}

func TestOfferIDsPreserveDocumentOrder(t *testing.T) {
	t.Parallel()

	engine := NewEngine(Config{}, nil, nil, fixedClock{}, zap.NewNop())
	doc, err := parseDocument(listingPage(0,
		"/pl/oferta/mieszkanie-trzypokojowe-ID4abc",
		"/pl/oferta/kawalerka-na-woli-ID4def",
	))
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"mieszkanie-trzypokojowe-ID4abc", "kawalerka-na-woli-ID4def"},
		engine.offerIDs(doc, "https://example.org/q"))
}

func TestLastPathSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href string
		want string
	}{
		{"/pl/oferta/kawalerka-ID4xyz", "kawalerka-ID4xyz"},
		{"https://www.otodom.pl/pl/oferta/kawalerka-ID4xyz", "kawalerka-ID4xyz"},
		{"/pl/oferta/kawalerka-ID4xyz/", "kawalerka-ID4xyz"},
		{"kawalerka-ID4xyz", "kawalerka-ID4xyz"},
		{"///", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, lastPathSegment(tc.href), "href %q", tc.href)
	}
}
