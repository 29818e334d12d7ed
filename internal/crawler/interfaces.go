package crawler

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Session implementations when a selector
// matches no element in the current document.
var ErrNotFound = errors.New("element not found")

// ErrScopeDiscovery indicates the pagination control could not be located
// at the start of a run, so the page count cannot be determined. It is
// fatal for the whole listing query.
var ErrScopeDiscovery = errors.New("pagination scope cannot be determined")

// Session is the rendering capability the engine drives: a browser tab
// that can open a URL, act on elements, and hand back the rendered DOM.
type Session interface {
	Open(ctx context.Context, url string) error
	Find(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	ScrollIntoView(ctx context.Context, selector string) error
	Enabled(ctx context.Context, selector string) (bool, error)
	CurrentURL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}

// IdentifierSink receives one batch per rendered listing page. The sink
// is append-only; the engine never reads back what it wrote.
type IdentifierSink interface {
	SaveIdentifierBatch(ctx context.Context, batch IdentifierBatch) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
