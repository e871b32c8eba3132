package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/resilience/circuitbreaker"
	"corruption-watch/internal/resilience/retry"
)

// Fetcher implements the L1 HTTP fetcher of spec §4.1. It is safe for
// concurrent use.
type Fetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// New creates a Fetcher configured with circuit breaking, retry, and
// SSRF-aware redirect validation.
func New(cfg Config) *Fetcher {
	f := &Fetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		config:         cfg,
	}

	f.client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", apperr.ErrFetchTerminal, len(via))
			}
			if err := validateURL(req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return f
}

// Fetch retrieves raw HTML for urlStr. It retries transient failures
// (network errors, 5xx) up to the configured max, through a circuit
// breaker shared across calls; 4xx responses fail immediately without
// retry (spec §4.1).
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	var html string
	retryCfg := f.retryConfig
	retryCfg.MaxAttempts = f.config.MaxRetries + 1

	err := retry.WithBackoff(ctx, retryCfg, func() error {
		result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, urlStr)
		})
		if err != nil {
			return err
		}
		html = result.(string)
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrFetchTransient) {
			return "", fmt.Errorf("%w: retries exhausted fetching %s: %w", apperr.ErrFetchTerminal, urlStr, err)
		}
		return "", fmt.Errorf("fetch %s: %w", urlStr, err)
	}
	return html, nil
}

func (f *Fetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", apperr.ErrInvalidInput, err)
	}
	// Accept-Encoding is left unset so the Transport adds it itself and
	// transparently decompresses a gzip response; setting it here would
	// leave resp.Body still gzip-compressed (net/http/transport.go).
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CorruptionWatchBot/1.0; +https://example.invalid/bot)")

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() != nil {
			return "", fmt.Errorf("%w: %w", apperr.ErrFetchTransient, &retry.HTTPError{StatusCode: http.StatusRequestTimeout, Message: err.Error()})
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return "", fmt.Errorf("%w: %w", apperr.ErrFetchTransient, urlErr.Err)
		}
		return "", fmt.Errorf("%w: %w", apperr.ErrFetchTransient, &retry.HTTPError{StatusCode: 0, Message: err.Error()})
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", apperr.ErrFetchTerminal, (&apperr.HTTPStatusError{StatusCode: resp.StatusCode, URL: urlStr}).Error())
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", fmt.Errorf("%w: %s", apperr.ErrFetchTerminal, (&apperr.HTTPStatusError{StatusCode: resp.StatusCode, URL: urlStr}).Error())
	}
	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: %w", apperr.ErrFetchTransient, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status})
	}

	limitedReader := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			apperr.ErrFetchTerminal, len(body), f.config.MaxBodySize)
	}

	slog.Debug("fetched content", slog.String("url", urlStr), slog.Int("bytes", len(body)))
	return string(bytes.TrimSpace(body)), nil
}
