// Package extractor implements the L2 extractor of spec §4.2: given
// raw HTML and the URL it came from, produce an
// model.ExtractedArticleContent. Dispatch is by URL host; the primary
// source runs a list of strategies in order until one clears the
// title/body floor.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// Strategy extracts article content from HTML. It returns an error
// (wrapping apperr.ErrParseError) when it cannot produce a usable
// result; the dispatcher tries the next strategy in that case.
type Strategy interface {
	Extract(html string, pageURL *url.URL) (model.ExtractedArticleContent, error)
}

// Extractor dispatches to a per-host ordered strategy list.
type Extractor struct {
	strategies map[string][]Strategy
	fallback   Strategy
}

// New builds an Extractor with no registered hosts; register hosts
// with Register, and optionally a process-wide fallback strategy used
// for any unregistered host via WithFallback.
func New() *Extractor {
	return &Extractor{strategies: make(map[string][]Strategy)}
}

// Register associates an ordered list of strategies with a host. Host
// matching is case-insensitive and ignores a leading "www.".
func (e *Extractor) Register(host string, strategies ...Strategy) {
	e.strategies[normalizeHost(host)] = strategies
}

// WithFallback sets a strategy tried for any host with no registered
// strategies, instead of failing with ErrUnsupportedDomain. Returns e
// for chaining.
func (e *Extractor) WithFallback(s Strategy) *Extractor {
	e.fallback = s
	return e
}

// Extract dispatches html/rawURL to the registered strategy list for
// rawURL's host, trying each until one succeeds.
func (e *Extractor) Extract(html, rawURL string) (model.ExtractedArticleContent, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return model.ExtractedArticleContent{}, fmt.Errorf("%w: invalid url %q: %v", apperr.ErrInvalidInput, rawURL, err)
	}

	strategies, ok := e.strategies[normalizeHost(parsed.Host)]
	if !ok {
		if e.fallback == nil {
			return model.ExtractedArticleContent{}, fmt.Errorf("%w: %s", apperr.ErrUnsupportedDomain, parsed.Host)
		}
		strategies = []Strategy{e.fallback}
	}

	var lastErr error
	for _, strategy := range strategies {
		content, err := strategy.Extract(html, parsed)
		if err != nil {
			lastErr = err
			continue
		}
		if err := content.Validate(); err != nil {
			lastErr = fmt.Errorf("%w: %v", apperr.ErrParseError, err)
			continue
		}
		return content, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no strategy produced a result", apperr.ErrParseError)
	}
	return model.ExtractedArticleContent{}, lastErr
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	return strings.TrimPrefix(host, "www.")
}
