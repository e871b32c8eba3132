package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"corruption-watch/internal/pipeline/apperr"
	"corruption-watch/internal/pipeline/model"
)

// ReadabilityStrategy is the extractor's strategy of last resort: when
// neither the structured-data nor the CSS strategy clears the
// title/body floor, fall back to Mozilla's Readability algorithm
// (ported from the teacher's content-enhancement fetcher, here
// repurposed as an extraction strategy rather than a fetch-time
// enhancement).
type ReadabilityStrategy struct{}

func (ReadabilityStrategy) Extract(html string, pageURL *url.URL) (model.ExtractedArticleContent, error) {
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return model.ExtractedArticleContent{}, fmt.Errorf("%w: readability: %v", apperr.ErrParseError, err)
	}

	text := article.TextContent
	if text == "" {
		text = article.Content
	}
	if text == "" {
		return model.ExtractedArticleContent{}, fmt.Errorf("%w: readability found no content", apperr.ErrParseError)
	}

	content := model.ExtractedArticleContent{
		Title:    strings.TrimSpace(article.Title),
		FullText: strings.TrimSpace(text),
		Author:   strings.TrimSpace(article.Byline),
	}
	if !article.PublishedTime.IsZero() {
		published := article.PublishedTime.UTC()
		content.PublishedDate = &published
	}
	return content, nil
}
