package offers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollyFetcherReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "otodom-crawler-test/1.0", r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(FetcherConfig{UserAgent: "otodom-crawler-test/1.0"})
	body, err := fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")
}

func TestCollyFetcherReportsHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(FetcherConfig{})
	_, err := fetcher.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestCollyFetcherHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fetcher := NewCollyFetcher(FetcherConfig{})
	_, err := fetcher.Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCollyFetcherClonePerFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(FetcherConfig{})

	first, err := fetcher.Fetch(context.Background(), srv.URL+"/first")
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), srv.URL+"/second")
	require.NoError(t, err)

	assert.Equal(t, "/first", string(first))
	assert.Equal(t, "/second", string(second))
}
