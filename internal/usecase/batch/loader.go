package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"corruption-watch/internal/pipeline/model"
)

// LoadJSONL reads every non-blank line from r as a DiscoveredArticle,
// hard-failing on the first JSON or schema error with the offending
// line number (spec §4.9 step 1).
func LoadJSONL(r io.Reader) ([]model.DiscoveredArticle, error) {
	var articles []model.DiscoveredArticle

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var article model.DiscoveredArticle
		if err := json.Unmarshal([]byte(line), &article); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNum, err)
		}
		if err := article.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		articles = append(articles, article)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return articles, nil
}

// URLLookup batch-queries existing URLs, the same narrow operation
// the article repository exposes (spec §4.7).
type URLLookup interface {
	ExistingURLs(urls []string) (map[string]struct{}, error)
}

// FilterExistingURLs removes any article whose URL already exists,
// returning the remainder and the count removed (spec §4.9 step 3).
func FilterExistingURLs(articles []model.DiscoveredArticle, lookup URLLookup) ([]model.DiscoveredArticle, int, error) {
	urls := make([]string, len(articles))
	for i, a := range articles {
		urls[i] = a.URL
	}

	existing, err := lookup.ExistingURLs(urls)
	if err != nil {
		return nil, 0, fmt.Errorf("filter existing urls: %w", err)
	}

	filtered := make([]model.DiscoveredArticle, 0, len(articles))
	for _, a := range articles {
		if _, ok := existing[a.URL]; !ok {
			filtered = append(filtered, a)
		}
	}
	return filtered, len(articles) - len(filtered), nil
}
