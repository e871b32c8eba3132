package fetcher_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corruption-watch/internal/infra/fetcher"
	"corruption-watch/internal/pipeline/apperr"
)

func newTestConfig() fetcher.Config {
	cfg := fetcher.DefaultConfig()
	cfg.DenyPrivateIPs = false // httptest servers bind to loopback
	cfg.MaxRetries = 1
	return cfg
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	f := fetcher.New(newTestConfig())
	html, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "hello")
}

func TestFetch_404IsTerminalNoRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := fetcher.New(newTestConfig())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrFetchTerminal)
	assert.Equal(t, 1, attempts, "404 must not be retried")
}

func TestFetch_RejectsNonHTTPScheme(t *testing.T) {
	f := fetcher.New(newTestConfig())
	_, err := f.Fetch(context.Background(), "ftp://example.test/a")
	assert.Error(t, err)
}

func TestFetch_BodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	cfg := newTestConfig()
	cfg.MaxBodySize = 1024
	f := fetcher.New(cfg)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetch_GzipResponseIsDecompressed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		_, _ = gw.Write([]byte("<html><body>gzipped hello</body></html>"))
		_ = gw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := fetcher.New(newTestConfig())
	html, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "gzipped hello", "Transport must auto-decompress since Accept-Encoding is left for it to set")
}

func TestFetch_5xxExhaustedBecomesTerminal(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := newTestConfig()
	cfg.MaxRetries = 0
	f := fetcher.New(cfg)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrFetchTransient, "a 5xx must be categorized as transient while retries are still possible")
	assert.ErrorIs(t, err, apperr.ErrFetchTerminal, "once retries are exhausted the caller must convert to terminal")
	assert.Equal(t, 1, attempts)
}
